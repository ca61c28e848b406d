package testutil

import (
	"math/rand"
	"sync"
)

// NewRand returns a deterministic random source for simulation tests.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) //nolint:gosec // G404 - deterministic test randomness
}

// ConstRand always returns the same value. Use it to force probability gates
// open (values near 1) or shut (0).
type ConstRand float64

// Float64 implements ports.Random.
func (c ConstRand) Float64() float64 {
	return float64(c)
}

// SeqRand replays a fixed sequence of values, then repeats the last one.
//
// Thread-safety: safe for concurrent use.
type SeqRand struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSeqRand creates a SeqRand over values.
func NewSeqRand(values ...float64) *SeqRand {
	return &SeqRand{values: values}
}

// Float64 implements ports.Random.
func (s *SeqRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[min(s.next, len(s.values)-1)]
	s.next++
	return v
}
