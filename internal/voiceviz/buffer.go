package voiceviz

import (
	"math"
	"sync/atomic"
)

// NumBands is the number of analyser bands every visualizer reads.
const NumBands = 32

// Levels is one snapshot of band energies on the analyser 0-255 scale.
type Levels [NumBands]float64

// LevelBuffer hands the latest band energies from a producer goroutine to the
// render loop. Store copies and swaps a pointer, so Load never observes a
// partially written snapshot.
//
// Thread-safety: safe for concurrent use.
type LevelBuffer struct {
	current atomic.Pointer[Levels]
}

// NewLevelBuffer creates a buffer holding all-zero levels.
func NewLevelBuffer() *LevelBuffer {
	b := &LevelBuffer{}
	b.current.Store(&Levels{})
	return b
}

// Store publishes levels. Missing bands read as zero, extra bands are ignored
// and non-finite or negative values are stored as zero.
func (b *LevelBuffer) Store(levels []float64) {
	next := &Levels{}
	for i := 0; i < NumBands && i < len(levels); i++ {
		v := levels[i]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		next[i] = v
	}
	b.current.Store(next)
}

// Load returns the most recent snapshot.
func (b *LevelBuffer) Load() Levels {
	return *b.current.Load()
}

// Reset publishes all-zero levels.
func (b *LevelBuffer) Reset() {
	b.current.Store(&Levels{})
}
