// Package prizepool holds the configured prize list and validates it before a draw.
package prizepool

import (
	"strings"

	"github.com/Ashenafi-pixel/guaguale/rng"
)

// Prize is one configured entry. Names need not be unique.
type Prize struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Pool is a validated configuration: every prize has Count > 0 and Total is their sum.
type Pool struct {
	Prizes []Prize
	Total  int
}

// Sanitize trims names and drops entries with an empty name or a negative count.
// Zero counts are kept so a setup form can round-trip them.
func Sanitize(configs []Prize) []Prize {
	out := make([]Prize, 0, len(configs))
	for _, p := range configs {
		name := strings.TrimSpace(p.Name)
		if name == "" || p.Count < 0 {
			continue
		}
		out = append(out, Prize{Name: name, Count: p.Count})
	}
	return out
}

// Validate sanitizes configs and returns the positive-count pool in config order.
// It fails with *ConfigError when nothing with a positive count remains.
func Validate(configs []Prize) (Pool, error) {
	var pool Pool
	for _, p := range Sanitize(configs) {
		if p.Count == 0 {
			continue
		}
		pool.Prizes = append(pool.Prizes, p)
		pool.Total += p.Count
	}
	if pool.Total == 0 {
		return Pool{}, &ConfigError{Message: "at least one prize with a count greater than 0 is required"}
	}
	return pool, nil
}

// Aggregate merges entries sharing a name, keeping first-appearance order.
func (p Pool) Aggregate() []Prize {
	idx := make(map[string]int, len(p.Prizes))
	var out []Prize
	for _, pr := range p.Prizes {
		if i, ok := idx[pr.Name]; ok {
			out[i].Count += pr.Count
			continue
		}
		idx[pr.Name] = len(out)
		out = append(out, pr)
	}
	return out
}

// PickSequence draws every unit one at a time by weighted index: pick r in
// [0, remaining), walk the cumulative counts, take that prize and decrement it.
// It yields the same distribution over orderings as deck.Draw and is kept for
// comparison runs.
func (p Pool) PickSequence(src rng.Source) []string {
	counts := make([]int, len(p.Prizes))
	remaining := 0
	for i, pr := range p.Prizes {
		counts[i] = pr.Count
		remaining += pr.Count
	}
	out := make([]string, 0, remaining)
	for remaining > 0 {
		r := src.Intn(remaining)
		for i, c := range counts {
			if c <= 0 {
				continue
			}
			if r < c {
				out = append(out, p.Prizes[i].Name)
				counts[i]--
				break
			}
			r -= c
		}
		remaining--
	}
	return out
}
