// Package random provides the uniform [0,1) draws used by the recommender and
// the curve synthesizer.
package random

import (
	"math/rand/v2"
	"sync"
)

// Source yields uniformly distributed values in [0, 1).
type Source interface {
	Float64() float64
}

type global struct{}

func (global) Float64() float64 { return rand.Float64() }

// Default returns a Source backed by the runtime's global generator. It is safe
// for concurrent use.
func Default() Source { return global{} }

type seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Seeded returns a reproducible Source.
func Seeded(seed uint64) Source {
	return &seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sequence replays fixed values in order and wraps around when exhausted.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequence creates a Sequence. With no values it always returns 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
