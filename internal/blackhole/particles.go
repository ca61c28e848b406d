package blackhole

import (
	"math"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	numSpirals           = 3
	spiralTurns          = 12 * math.Pi
	recycleRadii         = 1.1
	drawCutoffRadii      = 30.0
	particleBaseSpeed    = 0.0008
	particlePull         = 0.02
	maxTrailLength       = 8
	particleRerollChance = 0.7 // re-roll traits when rand > 0.7
	particleTintChance   = 0.9 // tinted when rand > 0.9
	particleBaseHue      = 220.0
)

// ParticleSystem is the accretion swirl: particles spiral inwards and are
// recycled into an outer annulus when they reach the horizon.
//
// The backing array only grows. Quality changes alter how many particles from
// the front of the array are simulated and drawn.
type ParticleSystem struct {
	rnd       ports.Random
	particles []domain.Particle
	active    int
}

// NewParticleSystem seeds count particles along three spiral arms.
func NewParticleSystem(rnd ports.Random, count int, geo Geometry) *ParticleSystem {
	ps := &ParticleSystem{rnd: rnd}
	ps.seedSpirals(count, geo)
	ps.active = len(ps.particles)
	return ps
}

func (ps *ParticleSystem) seedSpirals(count int, geo Geometry) {
	perSpiral := count / numSpirals
	if perSpiral < 1 {
		perSpiral = 1
	}

	ps.particles = make([]domain.Particle, 0, count)
	for spiral := 0; spiral < numSpirals; spiral++ {
		offset := float64(spiral) * 2 * math.Pi / numSpirals
		for i := 0; i < perSpiral && len(ps.particles) < count; i++ {
			frac := float64(i) / float64(perSpiral)
			angle := offset + frac*spiralTurns + uniform(ps.rnd, -0.1, 0.1)
			distance := frac*geo.Width*0.4 + geo.Radius*2 + uniform(ps.rnd, -10, 10)
			ps.particles = append(ps.particles, ps.newParticle(angle, distance, geo))
		}
	}

	// count not divisible by three: top up with recycled particles
	for len(ps.particles) < count {
		p := ps.newParticle(0, 0, geo)
		ps.recycle(&p, geo, true)
		ps.particles = append(ps.particles, p)
	}
}

func (ps *ParticleSystem) newParticle(angle, distance float64, geo Geometry) domain.Particle {
	p := domain.Particle{
		Angle:       angle,
		Distance:    math.Max(distance, geo.Radius*recycleRadii),
		Trail:       make([]domain.Point, 0, maxTrailLength),
		PulseRate:   uniform(ps.rnd, 0.01, 0.03),
		PulseOffset: uniform(ps.rnd, 0, 2*math.Pi),
		Alpha:       uniform(ps.rnd, 0.4, 1),
	}
	ps.rollTraits(&p)
	p.X = geo.Focal.X + math.Cos(p.Angle)*p.Distance
	p.Y = geo.Focal.Y + math.Sin(p.Angle)*p.Distance
	return p
}

func (ps *ParticleSystem) rollTraits(p *domain.Particle) {
	p.Size = uniform(ps.rnd, 0.5, 2.5)
	p.SpeedFactor = uniform(ps.rnd, 0.5, 1)
	p.TrailLength = 3 + int(math.Floor(ps.rnd.Float64()*6))
	p.Hue = 0
	if ps.rnd.Float64() > particleTintChance {
		p.Hue = uniform(ps.rnd, -30, 30)
	}
}

// recycle moves p to a random point of the annulus [W/6, W/6+W/3) and clears
// its trail. Traits are re-rolled with probability 0.3, or always when force is set.
func (ps *ParticleSystem) recycle(p *domain.Particle, geo Geometry, force bool) {
	p.Distance = math.Max(ps.rnd.Float64()*geo.Width/3+geo.Width/6, geo.Radius*recycleRadii)
	p.Angle = ps.rnd.Float64() * 2 * math.Pi
	p.X = geo.Focal.X + math.Cos(p.Angle)*p.Distance
	p.Y = geo.Focal.Y + math.Sin(p.Angle)*p.Distance
	p.Trail = p.Trail[:0]

	if force || ps.rnd.Float64() > particleRerollChance {
		ps.rollTraits(p)
	}
	if !finite(p.Size, p.SpeedFactor, p.Alpha, p.PulseRate, p.PulseOffset) {
		p.Size, p.SpeedFactor, p.Alpha, p.PulseRate, p.PulseOffset = 1, 0.75, 0.7, 0.02, 0
	}
}

// Grow appends recycled particles until the array holds at least n.
func (ps *ParticleSystem) Grow(n int, geo Geometry) {
	for len(ps.particles) < n {
		p := ps.newParticle(0, 0, geo)
		ps.recycle(&p, geo, true)
		ps.particles = append(ps.particles, p)
	}
}

// SetActive limits simulation and drawing to the first n particles.
func (ps *ParticleSystem) SetActive(n int) {
	ps.active = max(0, min(n, len(ps.particles)))
}

// Active returns the number of simulated particles.
func (ps *ParticleSystem) Active() int {
	return ps.active
}

// Reposition re-derives every position from its preserved angle and distance
// around a new focal point. Trails are dropped because they belong to the old frame.
func (ps *ParticleSystem) Reposition(geo Geometry) {
	for i := range ps.particles {
		p := &ps.particles[i]
		p.X = geo.Focal.X + math.Cos(p.Angle)*p.Distance
		p.Y = geo.Focal.Y + math.Sin(p.Angle)*p.Distance
		p.Trail = p.Trail[:0]
	}
}

// Particles returns a copy of the full particle array.
func (ps *ParticleSystem) Particles() []domain.Particle {
	out := make([]domain.Particle, len(ps.particles))
	for i, p := range ps.particles {
		p.Trail = append([]domain.Point(nil), p.Trail...)
		out[i] = p
	}
	return out
}

func proximityFactor(d, r float64) float64 {
	return math.Max(1, r*3/math.Max(d, r*1.2))
}

// Update advances the active particles by one frame.
// timeScale is Δt normalized to a 60 fps frame; t is simulation time in seconds.
func (ps *ParticleSystem) Update(timeScale, t float64, geo Geometry) {
	r := geo.Radius
	floor := r * recycleRadii

	for i := 0; i < ps.active; i++ {
		p := &ps.particles[i]
		if !finite(p.X, p.Y, p.Angle, p.Distance) {
			ps.recycle(p, geo, true)
			continue
		}

		// unshift the current position, keeping at most TrailLength entries
		tl := min(max(p.TrailLength, 1), maxTrailLength)
		if len(p.Trail) < tl {
			p.Trail = append(p.Trail, domain.Point{})
		}
		copy(p.Trail[1:], p.Trail[:len(p.Trail)-1])
		p.Trail[0] = domain.Point{X: p.X, Y: p.Y}
		if len(p.Trail) > tl {
			p.Trail = p.Trail[:tl]
		}

		d := geo.DistanceToFocal(p.X, p.Y)

		baseSpeed := particleBaseSpeed * timeScale * p.SpeedFactor
		speedVariation := 0.2 * math.Sin(p.Angle*2+t*0.5)
		prox := proximityFactor(d, r)
		orbitSpeed := baseSpeed * (r * 8 / math.Max(d, r)) * (1 + speedVariation) * (prox*prox*0.2 + 0.8)
		p.Angle += orbitSpeed

		pull := particlePull * timeScale * (r / math.Max(d, r))
		pulse := 1 + 0.1*math.Sin(t*p.PulseRate*1000+p.PulseOffset)
		p.Distance -= pull * pulse
		reachedFloor := p.Distance <= floor
		if reachedFloor {
			p.Distance = floor
		}

		p.X = geo.Focal.X + math.Cos(p.Angle)*p.Distance
		p.Y = geo.Focal.Y + math.Sin(p.Angle)*p.Distance

		// a particle pinned to the floor would otherwise circle it forever
		if d < floor || reachedFloor {
			ps.recycle(p, geo, false)
		}
	}
}

// Draw renders trails (when enabled) and bodies of the visible active particles.
func (ps *ParticleSystem) Draw(s ports.Surface, t float64, geo Geometry, trails bool, batchSize int) {
	r := geo.Radius

	forEachBatch(ps.active, batchSize, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p := &ps.particles[i]
			if !finite(p.X, p.Y) || !geo.InView(p.X, p.Y) {
				continue
			}

			d := geo.DistanceToFocal(p.X, p.Y)
			if d > r*drawCutoffRadii {
				continue
			}

			if trails && len(p.Trail) > 1 {
				distanceFactor := math.Min(1, (d-r)/(r*5))
				opacityPulse := 0.8 + 0.2*math.Sin(t*p.PulseRate*1000+p.PulseOffset)
				opacity := distanceFactor * p.Alpha * opacityPulse
				brightness := math.Min(1, proximityFactor(d, r)-1) * 0.5

				c := white(opacity + brightness*0.3)
				if p.Hue != 0 {
					c = hsla(particleBaseHue+p.Hue, 0.7, (80+brightness*20)/100, opacity+brightness*0.3)
				}
				s.Polyline(p.Trail, p.Size*(1+brightness*0.5), ports.CapButt, ports.Solid(c))
			}

			c := white(p.Alpha)
			if p.Hue != 0 {
				c = hsla(particleBaseHue+p.Hue, 0.7, 0.8, p.Alpha)
			}
			s.FillCircle(p.X, p.Y, p.Size/2, ports.Solid(c))
		}
	})
}
