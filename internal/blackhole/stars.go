package blackhole

import (
	"math"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	defaultLensedStars  = 300
	defaultTwinkleStars = 200
	defaultBatchSize    = 50

	ringRadii        = 1.8
	ringTwist        = 0.1
	lensRadii        = 10.0
	lensCutoffRadii  = 20.0
	deflectionScale  = 8.0
	tangentialShare  = 0.3
	stretchMinRadii  = 2.0
	stretchMaxRadii  = 5.0
	stretchGain      = 3.0
	twinkleNearRadii = 10.0
	mirrorChance     = 0.85 // mirror star drawn when rand > 0.85
	mirrorDimming    = 0.7
)

// LensRegime classifies how a star's light is bent.
type LensRegime int

// Lensing regimes, by distance from the singularity.
const (
	// LensFar skips all lensing math.
	LensFar LensRegime = iota
	// LensDeflected applies radial deflection plus a tangential share.
	LensDeflected
	// LensStretched is LensDeflected drawn as an ellipse elongated along the radial axis.
	LensStretched
	// LensRing maps the star onto the Einstein ring.
	LensRing
)

// LensResult is where a star appears after lensing.
type LensResult struct {
	X, Y   float64
	Regime LensRegime

	// RingFactor and RingAngle are set in the ring regime.
	RingFactor float64
	RingAngle  float64

	// Stretch in [0,1] and the ellipse rotation, set in the stretched regime.
	Stretch      float64
	StretchAngle float64
}

// Lens computes the displayed position of light originating at (ox, oy) for a
// singularity of radius r at (fx, fy). It is finite for every finite input,
// including a star exactly at the focal point.
func Lens(ox, oy, fx, fy, r float64) LensResult {
	dx, dy := ox-fx, oy-fy
	d := math.Hypot(dx, dy)

	if r <= 0 || d > r*lensCutoffRadii {
		return LensResult{X: ox, Y: oy, Regime: LensFar}
	}

	angle := math.Atan2(dy, dx)

	if d < r*ringRadii {
		ringRadius := r * ringRadii
		ringFactor := 1 - d/ringRadius
		ringAngle := angle + 2*math.Pi*ringFactor*ringTwist
		return LensResult{
			X:          fx + math.Cos(ringAngle)*ringRadius,
			Y:          fy + math.Sin(ringAngle)*ringRadius,
			Regime:     LensRing,
			RingFactor: ringFactor,
			RingAngle:  ringAngle,
		}
	}

	strength := math.Max(0, 1-math.Min(1, d/(r*lensRadii)))
	deflection := r * r * deflectionScale / math.Max(d, r)
	tangent := angle + math.Pi/2

	res := LensResult{
		X: ox - math.Cos(angle)*strength*deflection +
			math.Cos(tangent)*strength*deflection*tangentialShare,
		Y: oy - math.Sin(angle)*strength*deflection +
			math.Sin(tangent)*strength*deflection*tangentialShare,
		Regime: LensDeflected,
	}

	if d > r*stretchMinRadii && d < r*stretchMaxRadii {
		res.Regime = LensStretched
		res.Stretch = math.Max(0, 1-d/(r*stretchMaxRadii))
		res.StretchAngle = math.Atan2(fy-res.Y, fx-res.X)
	}
	return res
}

// Twinkle is the sinusoidal brightness modulation in [0,1] shared by both star populations.
func Twinkle(t, pulseSpeed, pulseOffset float64) float64 {
	return 0.5 + 0.5*math.Sin(t*pulseSpeed*1000+pulseOffset)
}

// StarField holds the lensed background population and the foreground twinkle stars.
type StarField struct {
	rnd       ports.Random
	lensed    []domain.BackgroundStar
	twinkle   []domain.TwinkleStar
	lensCache []LensResult
}

// NewStarField creates both populations with normalized placements and lays
// them out for geo.
func NewStarField(rnd ports.Random, lensedCount, twinkleCount int, geo Geometry) *StarField {
	f := &StarField{
		rnd:       rnd,
		lensed:    make([]domain.BackgroundStar, lensedCount),
		twinkle:   make([]domain.TwinkleStar, twinkleCount),
		lensCache: make([]LensResult, lensedCount),
	}

	for i := range f.lensed {
		f.lensed[i] = domain.BackgroundStar{
			U:           rnd.Float64(),
			V:           rnd.Float64(),
			Size:        uniform(rnd, 0.3, 1.5),
			BaseOpacity: uniform(rnd, 0.1, 0.8),
			PulseSpeed:  uniform(rnd, 0.001, 0.003),
			PulseOffset: uniform(rnd, 0, 2*math.Pi),
		}
	}
	for i := range f.twinkle {
		f.twinkle[i] = domain.TwinkleStar{
			U:           rnd.Float64(),
			V:           rnd.Float64(),
			Size:        rnd.Float64() * 1.5,
			BaseOpacity: uniform(rnd, 0.2, 1.0),
			PulseSpeed:  uniform(rnd, 0.001, 0.003),
			PulseOffset: uniform(rnd, 0, 2*math.Pi),
		}
	}

	f.Layout(geo)
	return f
}

// Layout re-derives original positions from the normalized placements.
func (f *StarField) Layout(geo Geometry) {
	for i := range f.lensed {
		s := &f.lensed[i]
		s.OriginalX = s.U * geo.Width
		s.OriginalY = s.V * geo.Height
		s.DisplayX, s.DisplayY = s.OriginalX, s.OriginalY
		f.lensCache[i] = LensResult{X: s.OriginalX, Y: s.OriginalY}
	}
	for i := range f.twinkle {
		s := &f.twinkle[i]
		s.X = s.U * geo.Width
		s.Y = s.V * geo.Height
	}
}

// Update recomputes the displayed position of every visible lensed star.
func (f *StarField) Update(geo Geometry) {
	for i := range f.lensed {
		s := &f.lensed[i]
		if !geo.InView(s.OriginalX, s.OriginalY) {
			continue
		}
		res := Lens(s.OriginalX, s.OriginalY, geo.Focal.X, geo.Focal.Y, geo.Radius)
		if !finite(res.X, res.Y) {
			res = LensResult{X: s.OriginalX, Y: s.OriginalY}
		}
		f.lensCache[i] = res
		s.DisplayX, s.DisplayY = res.X, res.Y
	}
}

// Draw renders lensed stars, completing the Einstein ring with occasional
// mirror stars, then the foreground twinkle stars.
func (f *StarField) Draw(s ports.Surface, t float64, geo Geometry, batchSize int) {
	r := geo.Radius

	forEachBatch(len(f.lensed), batchSize, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			star := &f.lensed[i]
			if !geo.InView(star.OriginalX, star.OriginalY) {
				continue
			}
			res := f.lensCache[i]

			if res.Regime == LensFar {
				s.FillCircle(star.OriginalX, star.OriginalY, star.Size, ports.Solid(white(star.BaseOpacity)))
				continue
			}

			opacity := star.BaseOpacity * Twinkle(t, star.PulseSpeed, star.PulseOffset)
			paint := ports.Solid(white(opacity))

			switch res.Regime {
			case LensRing:
				if f.rnd.Float64() > mirrorChance {
					mirror := res.RingAngle + math.Pi
					s.FillCircle(geo.Focal.X+math.Cos(mirror)*r*ringRadii, geo.Focal.Y+math.Sin(mirror)*r*ringRadii,
						star.Size, ports.Solid(white(opacity*mirrorDimming)))
				}
				s.FillCircle(res.X, res.Y, star.Size, paint)
			case LensStretched:
				s.FillEllipse(res.X, res.Y, star.Size*(1+res.Stretch*stretchGain), star.Size, res.StretchAngle, paint)
			default:
				s.FillCircle(res.X, res.Y, star.Size, paint)
			}
		}
	})

	forEachBatch(len(f.twinkle), batchSize, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			star := &f.twinkle[i]
			if star.Size <= 0 || !geo.InView(star.X, star.Y) {
				continue
			}
			opacity := star.BaseOpacity
			if geo.DistanceToFocal(star.X, star.Y) < r*twinkleNearRadii {
				opacity *= Twinkle(t, star.PulseSpeed, star.PulseOffset)
			}
			s.FillCircle(star.X, star.Y, star.Size, ports.Solid(white(opacity)))
		}
	})
}

// Lensed returns a copy of the background population.
func (f *StarField) Lensed() []domain.BackgroundStar {
	return append([]domain.BackgroundStar(nil), f.lensed...)
}

// Foreground returns a copy of the twinkle population.
func (f *StarField) Foreground() []domain.TwinkleStar {
	return append([]domain.TwinkleStar(nil), f.twinkle...)
}
