package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"

	"github.com/Ashenafi-pixel/guaguale/game"
)

var (
	ErrInvalidSessionID   = errors.New("invalid session id")
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

// Factory builds an idle session for id. The registry resumes it on first use.
type Factory func(id string) *game.Session

// Registry keeps live sessions in memory. Each session has its own lock so one
// request at a time mutates it; evicted sessions are resumed from storage on next use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	factory  Factory
	idle     time.Duration
	now      func() time.Time
}

type entry struct {
	mu           sync.Mutex
	session      *game.Session
	loaded       bool // Resume has succeeded; guarded by mu
	lastActivity time.Time
}

func NewRegistry(factory Factory, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = time.Hour
	}
	return &Registry{
		sessions: make(map[string]*entry),
		factory:  factory,
		idle:     idle,
		now:      time.Now,
	}
}

// canonicalID parses id as a UUID and returns its canonical lower-case form,
// so every spelling of one UUID maps to the same storage keys.
func canonicalID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidSessionID
	}
	return u.String(), nil
}

// Create allocates a new session id. Nothing is stored for it until the first draw.
func (r *Registry) Create() string {
	id := uuid.NewString()
	e := r.entry(id)
	e.mu.Lock()
	e.loaded = true
	e.mu.Unlock()
	return id
}

// entry returns the live entry for id, inserting an unloaded one if needed.
// Storage is never read under r.mu.
func (r *Registry) entry(id string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		e = &entry{session: r.factory(id)}
		r.sessions[id] = e
	}
	e.lastActivity = r.now()
	return e
}

// drop removes e from the map if it is still the entry for id.
func (r *Registry) drop(id string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[id] == e {
		delete(r.sessions, id)
	}
}

// With runs fn with exclusive access to session id, resuming it from storage on
// first use. A failed resume is returned and not cached, so the next request retries.
func (r *Registry) With(ctx context.Context, id string, fn func(*game.Session) error) error {
	id, err := canonicalID(id)
	if err != nil {
		return err
	}
	e := r.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		if _, err := e.session.Resume(ctx); err != nil {
			r.drop(id, e)
			return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		e.loaded = true
	}
	return fn(e.session)
}

// Len returns the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CleanUpInactiveSessions drops sessions idle for longer than the idle timeout.
// Their persisted state is untouched. Sessions holding partly scratched cards are
// kept, since scratch coverage lives only in memory.
func (r *Registry) CleanUpInactiveSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.sessions {
		if r.now().Sub(e.lastActivity) <= r.idle || !e.mu.TryLock() {
			continue
		}
		if e.session.HasPartialCoverage() {
			e.mu.Unlock()
			continue
		}
		delete(r.sessions, id)
		e.mu.Unlock()
		n++
	}
	return n
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.CleanUpInactiveSessions(); n > 0 {
				logger.Infof("evicted %d idle sessions", n)
			}
		}
	}
}
