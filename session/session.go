// Package session persists the in-progress deck and current page so a game can be
// resumed after a restart.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/logger"

	"github.com/Ashenafi-pixel/guaguale/deck"
	"github.com/Ashenafi-pixel/guaguale/kv"
)

// SchemaVersion is written into every record. Records without a version are read as version 1.
const SchemaVersion = 1

// ErrMalformed wraps every reason a stored record is rejected.
var ErrMalformed = errors.New("session: malformed record")

// State is the durable record of an in-progress game.
type State struct {
	Deck        deck.Deck
	CurrentPage int
}

// record is the persisted shape. Pointer fields let decode tell a missing field from a zero value.
type record struct {
	Version     int          `json:"version,omitempty"`
	AllCards    []cardRecord `json:"allCards"`
	CurrentPage *int         `json:"currentPage"`
}

type cardRecord struct {
	ID         *int    `json:"id"`
	PrizeName  *string `json:"prizeName"`
	IsRevealed *bool   `json:"isRevealed"`
}

// Store saves and loads one session record under a fixed key.
type Store struct {
	backend kv.Backend
	key     string
}

func NewStore(backend kv.Backend, key string) *Store {
	return &Store{backend: backend, key: key}
}

// Save overwrites the record with the full deck and page.
func (s *Store) Save(ctx context.Context, d deck.Deck, currentPage int) error {
	data, err := Encode(d, currentPage)
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("save session %s: %w", s.key, err)
	}
	return nil
}

// Load returns the stored state. It reports false when no game is in progress,
// including when the stored record does not match the schema; that case is logged
// as a warning. A failed read is returned as an error: the record may still exist.
func (s *Store) Load(ctx context.Context) (State, bool, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("load session %s: %w", s.key, err)
	}
	st, err := Decode(data)
	if err != nil {
		logger.Warningf("session: ignoring stored %s: %v", s.key, err)
		return State{}, false, nil
	}
	return st, true, nil
}

// Clear removes the record.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear session %s: %w", s.key, err)
	}
	return nil
}

// Encode renders the persisted JSON for a deck and page.
func Encode(d deck.Deck, currentPage int) ([]byte, error) {
	page := currentPage
	if page < 1 {
		page = 1
	}
	rec := record{
		Version:     SchemaVersion,
		AllCards:    make([]cardRecord, len(d)),
		CurrentPage: &page,
	}
	for i := range d {
		c := d[i]
		rec.AllCards[i] = cardRecord{ID: &c.ID, PrizeName: &c.PrizeName, IsRevealed: &c.Revealed}
	}
	return json.Marshal(rec)
}

// Decode parses and checks a persisted record. Card order is preserved.
func Decode(data []byte) (State, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if rec.Version != 0 && rec.Version != SchemaVersion {
		return State{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, rec.Version)
	}
	if rec.CurrentPage == nil {
		return State{}, fmt.Errorf("%w: missing currentPage", ErrMalformed)
	}
	if *rec.CurrentPage < 1 {
		return State{}, fmt.Errorf("%w: currentPage %d", ErrMalformed, *rec.CurrentPage)
	}
	if len(rec.AllCards) == 0 {
		return State{}, fmt.Errorf("%w: no cards", ErrMalformed)
	}
	d := make(deck.Deck, len(rec.AllCards))
	for i, c := range rec.AllCards {
		if c.ID == nil || c.PrizeName == nil || c.IsRevealed == nil {
			return State{}, fmt.Errorf("%w: card %d is missing fields", ErrMalformed, i)
		}
		d[i] = deck.Card{ID: *c.ID, PrizeName: *c.PrizeName, Revealed: *c.IsRevealed}
	}
	if err := d.Validate(); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return State{Deck: d, CurrentPage: *rec.CurrentPage}, nil
}
