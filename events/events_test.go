package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestBroadcaster_DeliversPerSession(t *testing.T) {
	b := NewBroadcaster(4)
	a, cancelA := b.Subscribe("s1")
	defer cancelA()
	other, cancelO := b.Subscribe("s2")
	defer cancelO()

	ev := RevealEvent{SessionID: "s1", CardID: 3, PrizeName: "A", Remaining: 2}
	if err := b.Publish(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-a:
		if got.CardID != 3 || got.PrizeName != "A" {
			t.Errorf("got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}
	select {
	case got := <-other:
		t.Errorf("other session received %+v", got)
	default:
	}
}

func TestBroadcaster_DropsWhenFull(t *testing.T) {
	b := NewBroadcaster(1)
	ch, cancel := b.Subscribe("s")
	defer cancel()
	for i := 0; i < 5; i++ {
		_ = b.Publish(context.Background(), RevealEvent{SessionID: "s", CardID: i})
	}
	if got := <-ch; got.CardID != 0 {
		t.Errorf("first buffered event = %d, want 0", got.CardID)
	}
	select {
	case got := <-ch:
		t.Errorf("expected dropped events, got %+v", got)
	default:
	}
}

func TestBroadcaster_CancelClosesAndUnregisters(t *testing.T) {
	b := NewBroadcaster(0)
	ch, cancel := b.Subscribe("s")
	if subscriberCount(b, "s") != 1 {
		t.Fatalf("Subscribers = %d", subscriberCount(b, "s"))
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
	if subscriberCount(b, "s") != 0 {
		t.Errorf("Subscribers after cancel = %d", subscriberCount(b, "s"))
	}
	if err := b.Publish(context.Background(), RevealEvent{SessionID: "s"}); err != nil {
		t.Error(err)
	}
}

type recordingConn struct {
	subject string
	data    []byte
	err     error
}

func (r *recordingConn) Publish(subject string, data []byte) error {
	r.subject, r.data = subject, data
	return r.err
}

func TestNATSPublisher_SubjectAndPayload(t *testing.T) {
	conn := &recordingConn{}
	p := newNATSPublisher(conn, "")
	ev := RevealEvent{ID: "e1", SessionID: "abc", CardID: 2, PrizeName: "B", Remaining: 1}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if conn.subject != "guaguale.abc.reveal" {
		t.Errorf("subject = %q", conn.subject)
	}
	var got RevealEvent
	if err := json.Unmarshal(conn.data, &got); err != nil {
		t.Fatal(err)
	}
	if got.CardID != 2 || got.PrizeName != "B" || got.SessionID != "abc" {
		t.Errorf("payload = %+v", got)
	}
}

func TestNATSPublisher_Errors(t *testing.T) {
	conn := &recordingConn{err: errors.New("down")}
	p := newNATSPublisher(conn, "x")
	if err := p.Publish(context.Background(), RevealEvent{SessionID: "s"}); err == nil {
		t.Error("expected publish error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn.err = nil
	if err := p.Publish(ctx, RevealEvent{SessionID: "s"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type failSink struct{ err error }

func (f failSink) Publish(context.Context, RevealEvent) error { return f.err }

func TestMulti_JoinsErrors(t *testing.T) {
	e1, e2 := errors.New("one"), errors.New("two")
	b := NewBroadcaster(1)
	ch, cancel := b.Subscribe("s")
	defer cancel()
	m := Multi{failSink{e1}, nil, b, failSink{e2}}
	err := m.Publish(context.Background(), RevealEvent{SessionID: "s"})
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Errorf("err = %v", err)
	}
	if len(ch) != 1 {
		t.Error("healthy sink should still receive the event")
	}
	if err := (Multi{b}).Publish(context.Background(), RevealEvent{SessionID: "s"}); err != nil {
		t.Errorf("err = %v", err)
	}
}

func subscriberCount(b *Broadcaster, sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}
