package events

import (
	"context"
	"sync"
)

const defaultBuffer = 16

// Broadcaster delivers events to in-process subscribers of a session.
// A subscriber whose buffer is full misses the event instead of stalling the publisher.
type Broadcaster struct {
	mu     sync.RWMutex
	buffer int
	subs   map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch   chan RevealEvent
	once sync.Once
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer < 1 {
		buffer = defaultBuffer
	}
	return &Broadcaster{buffer: buffer, subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe returns a channel of events for sessionID and a cancel func that
// unregisters and closes it. Cancel is safe to call more than once.
func (b *Broadcaster) Subscribe(sessionID string) (<-chan RevealEvent, func()) {
	s := &subscriber{ch: make(chan RevealEvent, b.buffer)}
	b.mu.Lock()
	set, ok := b.subs[sessionID]
	if !ok {
		set = make(map[*subscriber]struct{})
		b.subs[sessionID] = set
	}
	set[s] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[sessionID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(b.subs, sessionID)
			}
		}
		b.mu.Unlock()
		s.once.Do(func() { close(s.ch) })
	}
	return s.ch, cancel
}

func (b *Broadcaster) Publish(_ context.Context, ev RevealEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[ev.SessionID] {
		select {
		case s.ch <- ev:
		default:
		}
	}
	return nil
}
