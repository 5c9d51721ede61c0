package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Connect dials the NATS server with the reconnect policy used across our services.
func Connect(url, name string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	return nats.Connect(url, opts...)
}

// publisher is the subset of *nats.Conn the NATS sink needs.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes reveal events as JSON on <prefix>.<sessionID>.reveal.
type NATSPublisher struct {
	conn   publisher
	prefix string
}

func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	return newNATSPublisher(conn, prefix)
}

func newNATSPublisher(conn publisher, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = "guaguale"
	}
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject events of sessionID are published on.
func (p *NATSPublisher) Subject(sessionID string) string {
	return p.prefix + "." + sessionID + ".reveal"
}

func (p *NATSPublisher) Publish(ctx context.Context, ev RevealEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.Subject(ev.SessionID), data); err != nil {
		return fmt.Errorf("nats publish %s: %w", p.Subject(ev.SessionID), err)
	}
	return nil
}
