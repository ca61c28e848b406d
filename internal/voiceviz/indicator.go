package voiceviz

import (
	"math"
	"sync"

	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	indicatorBars       = 12
	indicatorStepMs     = 100.0
	indicatorMaxHeight  = 100.0
	indicatorInset      = 10.0
	indicatorBarOffset  = 8.0
	indicatorHeightGain = 0.15
	indicatorWidth      = 2.0
	indicatorDot        = 4.0
)

// Indicator is the small presence badge: twelve bars at 30° steps that
// flicker at random heights while the speaker is active.
//
// Thread-safety: all methods are safe for concurrent use.
type Indicator struct {
	rnd ports.Random

	mu       sync.Mutex
	size     float64
	active   bool
	bars     [indicatorBars]float64
	lastRoll float64
	rolled   bool
}

// NewIndicator creates an indicator of edge length size (60 when non-positive).
func NewIndicator(rnd ports.Random, size float64) *Indicator {
	if !(size > 0) {
		size = 60
	}
	return &Indicator{rnd: rnd, size: size}
}

// SetActive starts or stops the flicker. Deactivating zeros every bar.
func (ind *Indicator) SetActive(active bool) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if active == ind.active {
		return
	}
	ind.active = active
	ind.rolled = false
	if !active {
		ind.bars = [indicatorBars]float64{}
	}
}

// Tick re-rolls the bar heights every 100 ms while active.
func (ind *Indicator) Tick(ts float64) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if !ind.active || ind.rnd == nil {
		return
	}
	if ind.rolled && ts-ind.lastRoll < indicatorStepMs {
		return
	}
	for i := range ind.bars {
		ind.bars[i] = ind.rnd.Float64() * indicatorMaxHeight
	}
	ind.lastRoll, ind.rolled = ts, true
}

// Bars returns the current bar heights in [0, 100).
func (ind *Indicator) Bars() [indicatorBars]float64 {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.bars
}

// Draw renders the bars and the centre dot.
func (ind *Indicator) Draw(s ports.Surface) {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	c := ind.size / 2
	base := c - indicatorInset - indicatorBarOffset
	opacity, dot := 0.3, gray500
	if ind.active {
		opacity, dot = 0.8, white
	}
	paint := ports.Solid(withAlpha(white, opacity))

	for i, h := range ind.bars {
		angle := float64(i) * 30 * degreesToRads
		cos, sin := math.Cos(angle), math.Sin(angle)
		end := base + h*indicatorHeightGain
		s.Line(c+cos*base, c+sin*base, c+cos*end, c+sin*end, indicatorWidth, ports.CapRound, paint)
	}
	s.FillCircle(c, c, indicatorDot, ports.Solid(dot))
}
