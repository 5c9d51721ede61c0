// Package deck turns a validated prize pool into a shuffled deck of scratch cards.
package deck

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Ashenafi-pixel/guaguale/prizepool"
	"github.com/Ashenafi-pixel/guaguale/rng"
)

// Card is one revealable prize instance. ID and PrizeName never change after the draw.
type Card struct {
	ID        int    `json:"id"`
	PrizeName string `json:"prizeName"`
	Revealed  bool   `json:"isRevealed"`
}

// Deck is the ordered card list; order is display order.
type Deck []Card

// PrizeCount is one row of the remaining-prizes display.
type PrizeCount struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

var (
	ErrDuplicateID = errors.New("deck: duplicate card id")
	ErrEmptyName   = errors.New("deck: card without prize name")
)

// Draw expands the pool in config order, shuffles it with Fisher–Yates and numbers
// the cards 0..N-1 in their final order. Every arrangement is equally likely.
func Draw(pool prizepool.Pool, src rng.Source) Deck {
	names := make([]string, 0, pool.Total)
	for _, p := range pool.Prizes {
		for i := 0; i < p.Count; i++ {
			names = append(names, p.Name)
		}
	}
	shuffle(len(names), src, func(i, j int) { names[i], names[j] = names[j], names[i] })
	d := make(Deck, len(names))
	for i, n := range names {
		d[i] = Card{ID: i, PrizeName: n}
	}
	return d
}

// Shuffle re-permutes the deck in place. Cards keep their id, prize and revealed flag.
func (d Deck) Shuffle(src rng.Source) {
	shuffle(len(d), src, func(i, j int) { d[i], d[j] = d[j], d[i] })
}

func shuffle(n int, src rng.Source, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, src.Intn(i+1))
	}
}

// ActiveCounts scans the deck for unrevealed cards grouped by prize name.
// Names with nothing left are omitted.
func (d Deck) ActiveCounts() map[string]int {
	out := make(map[string]int)
	for _, c := range d {
		if !c.Revealed {
			out[c.PrizeName]++
		}
	}
	return out
}

// ActiveList is ActiveCounts sorted by name, for stable display.
func (d Deck) ActiveList() []PrizeCount {
	counts := d.ActiveCounts()
	out := make([]PrizeCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, PrizeCount{Name: name, Remaining: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Remaining counts unrevealed cards.
func (d Deck) Remaining() int {
	n := 0
	for _, c := range d {
		if !c.Revealed {
			n++
		}
	}
	return n
}

// Unrevealed returns the unrevealed cards in deck order.
func (d Deck) Unrevealed() Deck {
	out := make(Deck, 0, len(d))
	for _, c := range d {
		if !c.Revealed {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the position of the card with the given id.
func (d Deck) Find(id int) (int, bool) {
	for i, c := range d {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Reveal marks the card face-up. It reports false if the card is unknown or was
// already revealed; a revealed card is never turned back.
func (d Deck) Reveal(id int) bool {
	i, ok := d.Find(id)
	if !ok || d[i].Revealed {
		return false
	}
	d[i].Revealed = true
	return true
}

// Validate checks deck identity: unique ids and non-empty prize names.
func (d Deck) Validate() error {
	seen := make(map[int]bool, len(d))
	for _, c := range d {
		if seen[c.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = true
		if c.PrizeName == "" {
			return fmt.Errorf("%w: card %d", ErrEmptyName, c.ID)
		}
	}
	return nil
}
