// Package events fans reveal notifications out to live viewers and the message bus.
package events

import (
	"context"
	"errors"
	"time"
)

// RevealEvent is emitted once per card, when its scratch layer comes off.
type RevealEvent struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	CardID     int       `json:"cardId"`
	PrizeName  string    `json:"prizeName"`
	Remaining  int       `json:"remaining"`
	RevealedAt time.Time `json:"revealedAt"`
}

// Sink receives reveal events. Implementations must not block for long.
type Sink interface {
	Publish(ctx context.Context, ev RevealEvent) error
}

// Multi publishes to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, ev RevealEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
