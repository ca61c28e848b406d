package blackhole

import (
	"math"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	horizonFraction = 0.06 // R as a fraction of the shorter logical side
	cullMarginRadii = 5.0
)

// Geometry holds the viewport-derived constants every system reads.
// It is recomputed on resize and never mutated in between.
type Geometry struct {
	Width, Height float64 // logical size
	Radius        float64 // event horizon radius
	Focal         domain.Point
}

// NewGeometry derives the geometry of a logical w×h viewport.
func NewGeometry(w, h float64) Geometry {
	return Geometry{
		Width:  w,
		Height: h,
		Radius: math.Min(w, h) * horizonFraction,
		Focal:  domain.Point{X: w / 2, Y: h / 2},
	}
}

// InView reports whether (x, y) lies inside the viewport expanded by 5R.
func (g Geometry) InView(x, y float64) bool {
	m := g.Radius * cullMarginRadii
	return x > -m && x < g.Width+m && y > -m && y < g.Height+m
}

// DistanceToFocal returns the distance from (x, y) to the singularity.
func (g Geometry) DistanceToFocal(x, y float64) float64 {
	return math.Hypot(x-g.Focal.X, y-g.Focal.Y)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// uniform returns a value in [lo, hi).
func uniform(rnd ports.Random, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}

// forEachBatch calls fn over [0,n) in consecutive windows of at most size elements.
func forEachBatch(n, size int, fn func(lo, hi int)) {
	if size < 1 {
		size = n
	}
	for lo := 0; lo < n; lo += size {
		fn(lo, min(lo+size, n))
	}
}
