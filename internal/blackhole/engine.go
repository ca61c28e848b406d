// Package blackhole implements the procedural black-hole animation: a noise
// driven distortion grid, a lensed starfield, transient flares and an orbiting
// particle swirl, rendered through a frame-budgeted scheduler.
package blackhole

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	referenceFrameMs = 16.67
	maxDeltaMs       = referenceFrameMs * 2
	fadeAlpha        = 0.03
)

// Options holds the engine configuration.
type Options struct {
	// Viewport is the initial drawing area in device pixels.
	Viewport domain.Viewport

	// Signals are the device capability hints. Width, Height and
	// DevicePixelRatio are overwritten from the viewport on every resize.
	Signals domain.DeviceSignals

	// Tier forces a quality tier instead of deriving one from Signals.
	Tier *domain.QualityTier

	// FrameRateCap overrides the profile's cap when positive.
	FrameRateCap int

	// UpdateInterval is the grid column stride refreshed per frame (default 3).
	UpdateInterval int

	// BatchSize is the star and particle iteration window (default 50).
	BatchSize int

	// LensedStars and TwinkleStars size the two star populations (defaults 300 and 200).
	LensedStars  int
	TwinkleStars int

	// AdaptiveQuality steps the profile down when the measured frame rate
	// stays below budget.
	AdaptiveQuality bool

	// AfterFrame runs after every executed frame with the engine lock held.
	// Hosts use it to copy the surface out; it must not call into the engine.
	AfterFrame func()
}

// ResizableSurface is a surface whose backing store follows the viewport.
// The engine resizes it under its lock before recomputing the layout.
type ResizableSurface interface {
	ports.Surface
	Resize(width, height int, dpr float64)
}

// Engine owns every simulation array and the render loop state.
//
// Thread-safety: Tick, Resize, SetVisible and Dispose are serialized by an
// internal mutex, so bus callbacks arriving on other goroutines never
// interleave with a frame. The surface is only touched from Tick.
type Engine struct {
	logger  *slog.Logger
	bus     ports.EventBus
	rnd     ports.Random
	surface ports.Surface
	opts    Options

	mu sync.Mutex

	viewport  domain.Viewport
	profile   domain.PerformanceProfile
	floorTier domain.QualityTier // lowest tier reached by adaptive degradation
	geo       Geometry

	noise     *NoiseField
	grid      *DistortionGrid
	particles *ParticleSystem
	stars     *StarField
	flares    *FlareEmitter
	monitor   *FrameMonitor

	visible       bool
	needsBaseline bool
	lastFrame     float64 // ms
	lastTime      float64 // ms
	time          float64 // simulation seconds
	frames        uint64

	scheduler ports.FrameScheduler
	frameID   ports.FrameID
	subs      []domain.SubscriptionID
	disposed  bool
}

// NewEngine creates an engine drawing into surface. bus may be nil; when set,
// the engine follows visibility and resize events and publishes performance
// degradation.
func NewEngine(log *slog.Logger, bus ports.EventBus, rnd ports.Random, surface ports.Surface, opts Options) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}
	if rnd == nil {
		return nil, domain.NewValidationError("random", nil, "random source is required")
	}
	if surface == nil {
		return nil, domain.NewValidationError("surface", nil, "surface is required")
	}
	if !opts.Viewport.Valid() {
		return nil, fmt.Errorf("new engine: %w", domain.ErrInvalidViewport)
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.LensedStars <= 0 {
		opts.LensedStars = defaultLensedStars
	}
	if opts.TwinkleStars <= 0 {
		opts.TwinkleStars = defaultTwinkleStars
	}

	e := &Engine{
		logger:        log,
		bus:           bus,
		rnd:           rnd,
		surface:       surface,
		opts:          opts,
		visible:       true,
		needsBaseline: true,
		monitor:       NewFrameMonitor(),
	}

	e.viewport = opts.Viewport
	e.profile = e.deriveProfile()
	e.geo = NewGeometry(opts.Viewport.LogicalSize())

	e.noise = NewNoiseField(rnd)
	e.grid = NewDistortionGrid(e.noise, opts.UpdateInterval)
	e.grid.Build(e.geo.Width, e.geo.Height)
	e.stars = NewStarField(rnd, opts.LensedStars, opts.TwinkleStars, e.geo)
	e.particles = NewParticleSystem(rnd, e.profile.ParticleCount, e.geo)
	e.flares = NewFlareEmitter(rnd)

	if bus != nil {
		e.subs = append(e.subs,
			bus.Subscribe(domain.EventVisibilityChanged, func(event domain.Event) {
				if ev, ok := event.(domain.VisibilityChangedEvent); ok {
					e.SetVisible(ev.Visible)
				}
			}),
			bus.Subscribe(domain.EventViewportResized, func(event domain.Event) {
				ev, ok := event.(domain.ViewportResizedEvent)
				if !ok {
					return
				}
				if err := e.Resize(ev.Viewport.Width, ev.Viewport.Height, ev.Viewport.DevicePixelRatio); err != nil {
					e.logger.Warn("ignoring resize", slog.Any("error", err))
				}
			}),
		)
	}

	e.logger.Info("black hole engine created",
		slog.String("tier", e.profile.Tier.String()),
		slog.Int("particles", e.profile.ParticleCount),
		slog.Int("fps_cap", e.profile.FrameRateCap),
		slog.Float64("horizon_radius", e.geo.Radius))

	return e, nil
}

func (e *Engine) deriveProfile() domain.PerformanceProfile {
	w, h := e.viewport.LogicalSize()
	signals := e.opts.Signals
	signals.Width, signals.Height = w, h
	signals.DevicePixelRatio = e.viewport.DevicePixelRatio

	var p domain.PerformanceProfile
	if e.opts.Tier != nil {
		p = ProfileForTier(*e.opts.Tier, signals.DevicePixelRatio)
	} else {
		p = DeriveProfile(signals)
	}

	if p.Tier < e.floorTier {
		floor := ProfileForTier(e.floorTier, p.DevicePixelRatio)
		floor.IsMobile = floor.IsMobile || p.IsMobile
		p = floor
	}
	if e.opts.FrameRateCap > 0 {
		p.FrameRateCap = e.opts.FrameRateCap
	}
	return p
}

// Tick runs one frame at timestamp ts (ms) if the frame budget allows and
// reports whether it did. Hidden or disposed engines do nothing.
func (e *Engine) Tick(ts float64) bool {
	e.mu.Lock()
	executed, event := e.tickLocked(ts)
	bus := e.bus
	e.mu.Unlock()

	// published outside the lock: sync bus handlers may call back into the engine
	if event != nil && bus != nil {
		bus.Publish(*event)
	}
	return executed
}

func (e *Engine) tickLocked(ts float64) (bool, *domain.PerformanceDegradedEvent) {
	if e.disposed || !e.visible || !finite(ts) {
		return false, nil
	}

	var dt float64
	if e.needsBaseline {
		e.needsBaseline = false
		e.lastFrame = ts
		e.lastTime = ts
	} else {
		interval := e.profile.FrameInterval()
		elapsed := ts - e.lastFrame
		if elapsed < interval {
			return false, nil
		}
		e.lastFrame = ts - math.Mod(elapsed, interval)

		dt = math.Min(ts-e.lastTime, maxDeltaMs)
		if dt < 0 {
			dt = 0
		}
		e.lastTime = ts
	}

	e.time += dt / 1000
	e.frame(dt, dt/referenceFrameMs)
	e.frames++
	if e.opts.AfterFrame != nil {
		e.opts.AfterFrame()
	}

	return true, e.checkPerformance(ts)
}

func (e *Engine) frame(dtMs, timeScale float64) {
	s, geo, t := e.surface, e.geo, e.time

	s.Fill(ports.Solid(rgba(0, 0, 0, fadeAlpha)))

	if e.profile.EnableComplexAnimations {
		e.grid.Update(geo.Focal.X, geo.Focal.Y, geo.Radius, t)
		if e.rnd.Float64() > gridDrawChance {
			e.grid.Draw(s, geo.Focal.X, geo.Focal.Y, geo.Radius)
		}
	}

	e.stars.Update(geo)
	e.stars.Draw(s, t, geo, e.opts.BatchSize)

	drawGlow(s, geo, t, e.profile.EnableBlur)

	if e.flares.MaybeSpawn(t, geo) {
		e.logger.Debug("flare spawned", slog.Float64("time", t))
	}
	e.flares.Update(dtMs)
	e.flares.Draw(s, e.profile.EnableParticleEffects)

	e.particles.Update(timeScale, t, geo)
	e.particles.Draw(s, t, geo, e.profile.EnableParticleEffects, e.opts.BatchSize)
}

func (e *Engine) checkPerformance(ts float64) *domain.PerformanceDegradedEvent {
	if !e.opts.AdaptiveQuality {
		return nil
	}
	sample, ok := e.monitor.Record(ts, e.profile.FrameRateCap)
	if !ok || !sample.Degraded {
		return nil
	}

	if next, stepped := Degrade(e.profile); stepped {
		if e.opts.FrameRateCap > 0 {
			next.FrameRateCap = min(e.opts.FrameRateCap, next.FrameRateCap)
		}
		e.profile = next
		e.floorTier = next.Tier
		e.particles.SetActive(next.ParticleCount)
		// the new cap changes what "healthy" means; start a fresh window
		e.monitor.Reset()
	}

	e.logger.Warn("frame rate below budget",
		slog.Float64("fps", sample.FPS),
		slog.Float64("frame_time_ms", sample.FrameTime),
		slog.String("tier", e.profile.Tier.String()))

	event := domain.NewPerformanceDegradedEvent(sample.FPS, sample.FrameTime, e.profile.Tier)
	return &event
}

// Resize adopts a new viewport given in device pixels. Every position-derived
// constant is recomputed; particle angles and distances and the star
// populations are preserved.
func (e *Engine) Resize(width, height int, dpr float64) error {
	vp := domain.Viewport{Width: width, Height: height, DevicePixelRatio: dpr}
	if !vp.Valid() {
		return fmt.Errorf("resize %dx%d@%g: %w", width, height, dpr, domain.ErrInvalidViewport)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return domain.ErrDisposed
	}

	if rs, ok := e.surface.(ResizableSurface); ok {
		rs.Resize(width, height, dpr)
	}
	e.viewport = vp
	e.geo = NewGeometry(vp.LogicalSize())
	e.profile = e.deriveProfile()

	e.grid.Build(e.geo.Width, e.geo.Height)
	e.stars.Layout(e.geo)
	e.applyProfileLocked()
	e.particles.Reposition(e.geo)

	e.logger.Debug("engine resized",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Float64("dpr", dpr),
		slog.Float64("horizon_radius", e.geo.Radius),
		slog.String("tier", e.profile.Tier.String()))
	return nil
}

func (e *Engine) applyProfileLocked() {
	e.particles.Grow(e.profile.ParticleCount, e.geo)
	e.particles.SetActive(e.profile.ParticleCount)
}

// SetTier forces a quality tier, or returns to deriving it from the device
// signals when tier is nil. Adaptive degradation starts over.
func (e *Engine) SetTier(tier *domain.QualityTier) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return
	}
	if tier != nil {
		t := *tier
		tier = &t
	}
	e.opts.Tier = tier
	e.floorTier = domain.TierDesktop
	e.profile = e.deriveProfile()
	e.applyProfileLocked()
	e.monitor.Reset()

	e.logger.Info("quality tier changed",
		slog.String("tier", e.profile.Tier.String()),
		slog.Int("particles", e.profile.ParticleCount))
}

// SetVisible suspends or resumes rendering. Returning to visible resets the
// timing baseline so the first frame after a pause advances by zero.
func (e *Engine) SetVisible(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || visible == e.visible {
		return
	}
	e.visible = visible
	if visible {
		e.needsBaseline = true
	}
	e.monitor.Reset()
	e.logger.Debug("engine visibility changed", slog.Bool("visible", visible))
}

// Start arms the render loop on scheduler. Each callback ticks and re-arms,
// including while hidden.
func (e *Engine) Start(scheduler ports.FrameScheduler) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return domain.ErrDisposed
	}
	if e.scheduler != nil {
		return domain.ErrAlreadyStarted
	}
	e.scheduler = scheduler
	e.frameID = scheduler.RequestFrame(e.onFrame)
	return nil
}

func (e *Engine) onFrame(ts float64) {
	e.Tick(ts)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || e.scheduler == nil {
		return
	}
	e.frameID = e.scheduler.RequestFrame(e.onFrame)
}

// Dispose stops the loop and detaches from the bus. After Dispose returns no
// frame callback runs and all methods are no-ops. Safe to call repeatedly.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	if e.scheduler != nil {
		e.scheduler.CancelFrame(e.frameID)
		e.scheduler = nil
	}
	subs := e.subs
	e.subs = nil
	frames := e.frames
	e.mu.Unlock()

	if e.bus != nil {
		for _, id := range subs {
			e.bus.Unsubscribe(id)
		}
	}
	e.logger.Info("black hole engine disposed", slog.Uint64("frames", frames))
}

// Profile returns the current performance profile.
func (e *Engine) Profile() domain.PerformanceProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// Geometry returns the current viewport-derived constants.
func (e *Engine) Geometry() Geometry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.geo
}

// Time returns the simulation time in seconds.
func (e *Engine) Time() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.time
}

// Frames returns the number of executed frames.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Visible reports whether the engine is rendering.
func (e *Engine) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}

// Particles returns a copy of the particle array; ActiveParticles of them are simulated.
func (e *Engine) Particles() []domain.Particle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.particles.Particles()
}

// ActiveParticles returns how many particles are simulated under the current profile.
func (e *Engine) ActiveParticles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.particles.Active()
}

// Stars returns copies of the lensed and foreground star populations.
func (e *Engine) Stars() ([]domain.BackgroundStar, []domain.TwinkleStar) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stars.Lensed(), e.stars.Foreground()
}

// Flares returns a copy of the active flares.
func (e *Engine) Flares() []domain.Flare {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flares.Flares()
}
