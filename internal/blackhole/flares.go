package blackhole

import (
	"math"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	flareCooldown    = 2.5   // seconds
	flareSpawnGate   = 0.992 // spawn when rand > 0.992
	flareRingRadii   = 1.2
	flareBlueChance  = 0.7 // blue when rand > 0.7
	flareBlueHue     = 210.0
	flareTrailChance = 0.5
	flareDrift       = 0.05 // position units per ms per unit velocity
	flareDamping     = 0.99
	flareLensLength  = 1.5
	flareLensWidth   = 0.15
	flareCrossWidth  = 0.08
	flareTrailWidth  = 0.3
	flareLensAlpha   = 0.6
	flareCrossAlpha  = 0.4
	flareTrailAlpha  = 0.7
	flareCoreHot     = 0.65
	flareCoreCold    = 0.7
)

// FlareOpacity is the parabolic life envelope: zero at birth and death and
// BaseOpacity at mid-life.
func FlareOpacity(f domain.Flare) float64 {
	if f.MaxLife <= 0 {
		return 0
	}
	progress := f.Life / f.MaxLife
	return f.BaseOpacity * (1 - 4*(progress-0.5)*(progress-0.5))
}

// FlareEmitter spawns and animates transient flares on the accretion ring.
type FlareEmitter struct {
	rnd       ports.Random
	flares    []domain.Flare
	lastSpawn float64 // simulation seconds
}

// NewFlareEmitter creates an emitter with no active flares.
func NewFlareEmitter(rnd ports.Random) *FlareEmitter {
	return &FlareEmitter{rnd: rnd}
}

// MaybeSpawn rolls the spawn gate at simulation time t and reports whether a flare was born.
func (e *FlareEmitter) MaybeSpawn(t float64, geo Geometry) bool {
	if t-e.lastSpawn <= flareCooldown || e.rnd.Float64() <= flareSpawnGate {
		return false
	}
	e.lastSpawn = t
	e.flares = append(e.flares, e.newFlare(geo))
	return true
}

func (e *FlareEmitter) newFlare(geo Geometry) domain.Flare {
	r := geo.Radius
	angle := e.rnd.Float64() * 2 * math.Pi

	hue := 25 + math.Floor(e.rnd.Float64()*20)
	if e.rnd.Float64() > flareBlueChance {
		hue = flareBlueHue
	}

	f := domain.Flare{
		X:           geo.Focal.X + math.Cos(angle)*r*flareRingRadii,
		Y:           geo.Focal.Y + math.Sin(angle)*r*flareRingRadii,
		Size:        r * uniform(e.rnd, 0.25, 0.5),
		BaseOpacity: uniform(e.rnd, 0.6, 0.9),
		Angle:       angle,
		MaxLife:     uniform(e.rnd, 1.5, 3),
		Hue:         hue,
		VX:          math.Cos(angle) * uniform(e.rnd, 0.2, 0.5),
		VY:          math.Sin(angle) * uniform(e.rnd, 0.2, 0.5),
		HasTrail:    e.rnd.Float64() > flareTrailChance,
		TrailLength: 3 + int(math.Floor(e.rnd.Float64()*5)),
	}
	if f.HasTrail {
		f.Trail = make([]domain.Point, 0, f.TrailLength+1)
	}
	return f
}

// Update ages every flare by dtMs milliseconds, drops the expired ones and
// drifts the rest outwards with damping.
func (e *FlareEmitter) Update(dtMs float64) {
	alive := e.flares[:0]
	for _, f := range e.flares {
		f.Life += dtMs / 1000
		if f.Life >= f.MaxLife || !finite(f.X, f.Y, f.VX, f.VY) {
			continue
		}

		if f.HasTrail {
			if len(f.Trail) > f.TrailLength {
				f.Trail = f.Trail[:f.TrailLength]
			}
			f.Trail = append(f.Trail, domain.Point{})
			copy(f.Trail[1:], f.Trail[:len(f.Trail)-1])
			f.Trail[0] = domain.Point{X: f.X, Y: f.Y}
		}

		f.X += f.VX * dtMs * flareDrift
		f.Y += f.VY * dtMs * flareDrift
		f.VX *= flareDamping
		f.VY *= flareDamping
		alive = append(alive, f)
	}
	clear(e.flares[len(alive):])
	e.flares = alive
}

// Draw renders each flare as a radial blob with an optional trail and a pair
// of crossed lens streaks.
func (e *FlareEmitter) Draw(s ports.Surface, trails bool) {
	for _, f := range e.flares {
		opacity := FlareOpacity(f)
		if opacity <= 0 || f.Size <= 0 {
			continue
		}

		core := flareCoreHot
		if f.Hue == flareBlueHue {
			core = flareCoreCold
		}
		s.FillCircle(f.X, f.Y, f.Size, ports.WithGradient(&ports.Gradient{
			Kind: ports.GradientRadial,
			X0:   f.X,
			Y0:   f.Y,
			X1:   f.X,
			Y1:   f.Y,
			R1:   f.Size,
			Stops: []ports.ColorStop{
				{Offset: 0, Color: hsla(f.Hue, 1, core, opacity)},
				{Offset: 0.5, Color: hsla(f.Hue, 1, 0.7, opacity*0.5)},
				{Offset: 1, Color: hsla(f.Hue, 1, 0.8, 0)},
			},
		}))

		if trails && f.HasTrail && len(f.Trail) > 1 {
			head, tail := f.Trail[0], f.Trail[len(f.Trail)-1]
			s.Polyline(f.Trail, f.Size*flareTrailWidth, ports.CapRound, ports.WithGradient(&ports.Gradient{
				Kind: ports.GradientLinear,
				X0:   head.X,
				Y0:   head.Y,
				X1:   tail.X,
				Y1:   tail.Y,
				Stops: []ports.ColorStop{
					{Offset: 0, Color: hsla(f.Hue, 1, 0.7, opacity*flareTrailAlpha)},
					{Offset: 1, Color: hsla(f.Hue, 1, 0.8, 0)},
				},
			}))
		}

		cos, sin := math.Cos(f.Angle), math.Sin(f.Angle)
		l := f.Size * flareLensLength
		s.Line(f.X-cos*l, f.Y-sin*l, f.X+cos*l, f.Y+sin*l, f.Size*flareLensWidth, ports.CapButt,
			ports.Solid(hsla(f.Hue, 1, 0.8, opacity*flareLensAlpha)))

		// perpendicular streak: (cos, sin) rotated by 90 degrees
		s.Line(f.X+sin*f.Size, f.Y-cos*f.Size, f.X-sin*f.Size, f.Y+cos*f.Size, f.Size*flareCrossWidth, ports.CapButt,
			ports.Solid(hsla(f.Hue, 1, 0.8, opacity*flareCrossAlpha)))
	}
}

// Flares returns a copy of the active flares.
func (e *FlareEmitter) Flares() []domain.Flare {
	out := make([]domain.Flare, len(e.flares))
	for i, f := range e.flares {
		f.Trail = append([]domain.Point(nil), f.Trail...)
		out[i] = f
	}
	return out
}
