// Package history keeps an append-only audit trail of revealed cards.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/logger"
)

// ErrCorrupt is returned when the history file is not a JSON list of records.
var ErrCorrupt = errors.New("history: corrupt ledger")

// Record is one revealed card, in reveal order.
type Record struct {
	SessionID  string    `json:"sessionId"`
	CardID     int       `json:"cardId"`
	PrizeName  string    `json:"prizeName"`
	Remaining  int       `json:"remaining"` // unrevealed cards left after this reveal
	RevealedAt time.Time `json:"revealedAt"`
}

// ResultsStore appends reveal records to data/reveal_history.json.
type ResultsStore struct {
	mu      sync.Mutex
	dataDir string
}

func NewResultsStore(dataDir string) *ResultsStore {
	if dataDir == "" {
		dataDir = "data"
	}
	return &ResultsStore{dataDir: dataDir}
}

func (rs *ResultsStore) path() string {
	return filepath.Join(rs.dataDir, "reveal_history.json")
}

// read returns the stored list; a missing file is an empty history.
func (rs *ResultsStore) read() ([]Record, error) {
	data, err := os.ReadFile(rs.path())
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	var list []Record
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, rs.path(), err)
	}
	if list == nil {
		list = []Record{}
	}
	return list, nil
}

// Append adds r to the end of the history file.
func (rs *ResultsStore) Append(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if err := os.MkdirAll(rs.dataDir, 0755); err != nil {
		return err
	}
	list, err := rs.read()
	if errors.Is(err, ErrCorrupt) {
		// Keep the unreadable file for inspection and start a fresh ledger.
		aside := fmt.Sprintf("%s.corrupt-%d", rs.path(), time.Now().Unix())
		if rerr := os.Rename(rs.path(), aside); rerr != nil {
			return fmt.Errorf("move aside %s: %w", rs.path(), rerr)
		}
		logger.Warningf("%v; moved to %s", err, aside)
		list = []Record{}
	} else if err != nil {
		return err
	}
	list = append(list, r)
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rs.path(), data, 0644)
}

// BySession returns the records of sessionID in reveal order.
func (rs *ResultsStore) BySession(sessionID string) ([]Record, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	list, err := rs.read()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0)
	for _, r := range list {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}
