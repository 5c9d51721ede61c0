package prizepool

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/logger"

	"github.com/Ashenafi-pixel/guaguale/kv"
)

// Store persists the prize configuration record ([{name,count}]) under one key.
type Store struct {
	backend kv.Backend
	key     string
}

func NewStore(backend kv.Backend, key string) *Store {
	return &Store{backend: backend, key: key}
}

// Save overwrites the stored configuration with the sanitized list.
func (s *Store) Save(ctx context.Context, configs []Prize) error {
	data, err := json.Marshal(Sanitize(configs))
	if err != nil {
		return err
	}
	return s.backend.Put(ctx, s.key, data)
}

// Load returns the stored configuration. A missing or unreadable record is
// reported as absent; unreadable records are logged.
func (s *Store) Load(ctx context.Context) ([]Prize, bool) {
	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			logger.Warningf("prizepool: read %s: %v", s.key, err)
		}
		return nil, false
	}
	var list []Prize
	if err := json.Unmarshal(data, &list); err != nil {
		logger.Warningf("prizepool: discarding malformed %s: %v", s.key, err)
		return nil, false
	}
	return Sanitize(list), true
}
