// Package rng provides the random sources used to draw and shuffle decks.
package rng

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Source returns uniform ints in [0, n). Implementations must handle n <= 0 by returning 0.
type Source interface {
	Intn(n int) int
}

// Crypto draws from crypto/rand. It is the source used for live games.
type Crypto struct{}

func (Crypto) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms; keep the draw going regardless.
		return mrand.IntN(n)
	}
	return int(v.Int64())
}

// Seeded is a reproducible PCG source for the CLI and simulations.
type Seeded struct {
	r *mrand.Rand
}

func NewSeeded(seed uint64) *Seeded {
	return &Seeded{r: mrand.New(mrand.NewPCG(seed, 0))}
}

func (s *Seeded) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}
