// Package rng provides the production randomness source: explicitly seeded,
// reproducible draw for draw.
package rng

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source implements ports.RNG over a seeded PCG generator. A Source is owned
// by exactly one engine; it is not safe for concurrent use.
type Source struct {
	src  rand.Source
	rand *rand.Rand
}

// New creates a deterministic source for the given seed. Two sources built
// from the same seed produce identical draw sequences.
func New(seed int64) *Source {
	src := rand.NewPCG(uint64(seed), uint64(seed)+1)
	return &Source{src: src, rand: rand.New(src)}
}

// Float64 returns a uniform draw from [0, 1).
func (s *Source) Float64() float64 {
	return s.rand.Float64()
}

// Uniform returns a uniform draw from [min, max).
func (s *Source) Uniform(min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: s.src}.Rand()
}

// IntN returns a uniform draw from [0, n). Panics if n <= 0.
func (s *Source) IntN(n int) int {
	return s.rand.IntN(n)
}
