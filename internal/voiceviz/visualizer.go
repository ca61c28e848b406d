// Package voiceviz renders the audio-reactive voice-session visualizers: a
// radial wave driven by 32 analyser bands per speaker, plus a small presence
// indicator.
package voiceviz

import (
	"image/color"
	"log/slog"
	"math"
	"sync"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	defaultSize   = 280.0
	coreRatio     = 0.25 // centre disc radius as a fraction of size
	coreBorder    = 4.0
	glowExtent    = 0.7
	ringWidth     = 1.0
	dotRadius     = 6.0
	dotSpacing    = 16.0
	dotBounce     = 6.0
	dotDelayMs    = 200.0
	dotPeriodMs   = 1000.0
	degreesToRads = math.Pi / 180
)

func alpha8(a float64) uint8 {
	if math.IsNaN(a) || a <= 0 {
		return 0
	}
	if a >= 1 {
		return 255
	}
	return uint8(math.Round(a * 255))
}

// withAlpha scales the alpha of c by a.
func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = alpha8(float64(c.A) / 255 * a)
	return c
}

// Visualizer is one audio-reactive radial wave. Levels arrive through its
// LevelBuffer from any goroutine; Tick and Draw run on the render loop.
//
// Thread-safety: all methods are safe for concurrent use.
type Visualizer struct {
	logger  *slog.Logger
	variant Variant
	levels  *LevelBuffer

	mu       sync.Mutex
	size     float64
	active   bool
	status   domain.VoiceStatus
	smoothed Levels
	phase    float64
	breath   float64
	rotation float64 // degrees
	pulse    float64
	lastTs   float64
	disposed bool
}

// NewVisualizer creates a visualizer of the given variant and edge length.
// A non-positive size falls back to 280.
func NewVisualizer(log *slog.Logger, variant Variant, size float64) *Visualizer {
	if log == nil {
		log = logger.Nop()
	}
	if !(size > 0) {
		size = defaultSize
	}
	return &Visualizer{
		logger:  log.With(slog.String("visualizer", variant.Name)),
		variant: variant,
		levels:  NewLevelBuffer(),
		size:    size,
		status:  domain.VoiceIdle,
		pulse:   variant.Pulse.Initial,
	}
}

// Levels returns the buffer producers write band energies into.
func (v *Visualizer) Levels() *LevelBuffer {
	return v.levels
}

// SetLevels stores a new band snapshot.
func (v *Visualizer) SetLevels(levels []float64) {
	v.levels.Store(levels)
}

// SetActive switches between the speaking and idle presentation.
func (v *Visualizer) SetActive(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = active
}

// Active reports whether the visualizer shows speech.
func (v *Visualizer) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

// SetStatus records the session status used for idle styling.
func (v *Visualizer) SetStatus(status domain.VoiceStatus) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if status != v.status {
		v.logger.Debug("visualizer status changed", slog.String("status", string(status)))
	}
	v.status = status
}

// Status returns the last status set.
func (v *Visualizer) Status() domain.VoiceStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Resize changes the edge length. Non-positive sizes are rejected.
func (v *Visualizer) Resize(size float64) error {
	if !(size > 0) || math.IsInf(size, 0) {
		return domain.NewValidationError("size", size, "visualizer size must be positive")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return domain.ErrDisposed
	}
	v.size = size
	return nil
}

// Size returns the edge length.
func (v *Visualizer) Size() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

// Tick advances the animation by one frame at timestamp ts (ms) and reports
// whether it ran. Disposed visualizers do nothing.
func (v *Visualizer) Tick(ts float64) bool {
	target := v.levels.Load()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return false
	}
	vt := v.variant

	if v.active {
		v.rotation += vt.RotationActive
	} else {
		v.rotation += vt.RotationIdle
	}
	v.rotation = math.Mod(v.rotation, 360)
	v.phase += vt.PhaseStep
	v.breath += vt.BreathStep

	factor := vt.SmoothingIdle
	if v.active {
		factor = vt.SmoothingActive
	}
	for i := range v.smoothed {
		v.smoothed[i] += (target[i] - v.smoothed[i]) * factor
	}

	p := vt.Pulse
	goal := p.IdleBase + p.IdleAmplitude*math.Sin(v.breath)
	if v.active && p.PeriodMs > 0 {
		goal = p.Base + p.Amplitude*math.Sin(ts/p.PeriodMs)
	}
	v.pulse += (goal - v.pulse) * p.Approach

	v.lastTs = ts
	return true
}

// Smoothed returns the current smoothed band levels.
func (v *Visualizer) Smoothed() Levels {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.smoothed
}

// Scale returns the centre disc scale factor.
func (v *Visualizer) Scale() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scaleLocked()
}

func (v *Visualizer) scaleLocked() float64 {
	return v.variant.Pulse.ScaleBase + v.variant.Pulse.ScaleGain*v.pulse
}

// Rotation returns the wave rotation in degrees.
func (v *Visualizer) Rotation() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rotation
}

// Phase returns the wave phase.
func (v *Visualizer) Phase() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

// Radii returns the wave radius of every band for the current state.
func (v *Visualizer) Radii() Levels {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out Levels
	for i := range out {
		out[i] = v.radiusLocked(i)
	}
	return out
}

func (v *Visualizer) radiusLocked(band int) float64 {
	vt := v.variant
	r := v.size*vt.InnerRadius + v.smoothed[band]*vt.Gain
	for _, h := range vt.Harmonics {
		r += math.Sin(v.phase*h.Frequency+float64(band)*h.Offset) * v.size * h.Amplitude
	}
	return r
}

// Draw renders the visualizer centred in a size×size square at the surface origin.
func (v *Visualizer) Draw(s ports.Surface) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}

	vt := v.variant
	size := v.size
	c := size / 2
	inner := size * vt.InnerRadius
	connected := v.status != domain.VoiceIdle && v.status != domain.VoiceConnecting

	if v.active {
		glow := vt.Glow
		if vt.GlowFollowsPulse {
			glow *= v.pulse
		}
		s.FillCircle(c, c, c, radialFade(c, c, c, 0, glow))
	}

	rot := v.rotation * degreesToRads
	for i := 0; i < NumBands; i++ {
		angle := float64(i)*2*math.Pi/NumBands + rot
		cos, sin := math.Cos(angle), math.Sin(angle)
		wave := v.radiusLocked(i)
		if math.IsNaN(wave) || math.IsInf(wave, 0) {
			continue
		}
		for _, l := range vt.Layers {
			opacity := vt.IdleOpacity
			if v.active {
				opacity = l.Opacity
			}
			r := wave * l.Radius
			s.Line(c+cos*inner, c+sin*inner, c+cos*r, c+sin*r, size*l.Width, ports.CapRound,
				ports.Solid(withAlpha(white, opacity)))
		}
	}

	v.drawCore(s, c, connected)
	v.drawRings(s, c, connected)

	if vt.ShowConnecting && v.status == domain.VoiceConnecting {
		for i := 0; i < 3; i++ {
			phase := (v.lastTs - float64(i)*dotDelayMs) / dotPeriodMs * math.Pi
			bounce := math.Abs(math.Sin(phase)) * dotBounce
			x := size - dotRadius - float64(2-i)*dotSpacing
			s.FillCircle(x, dotRadius+dotBounce-bounce, dotRadius/2, ports.Solid(yellow))
		}
	}
}

func (v *Visualizer) drawCore(s ports.Surface, c float64, connected bool) {
	vt := v.variant
	r := v.size * coreRatio * v.scaleLocked()

	fill, border := vt.CoreIdle, gray600
	switch {
	case v.active:
		fill, border = vt.CoreActive, white
	case connected:
		border = vt.CoreConnectedBorder
	}
	s.FillCircle(c, c, r, ports.Solid(fill))

	glow := 0.0
	switch {
	case v.active:
		glow = vt.CoreGlowActive
		if vt.CoreGlowFollowsPulse {
			glow *= v.pulse
		}
	case connected:
		glow = vt.CoreGlowConnected
	}
	if glow > 0 {
		s.FillCircle(c, c, r, radialFade(c, c, r, 0, glow))
	}
	s.StrokeCircle(c, c, r, coreBorder, ports.Solid(border))
}

func (v *Visualizer) drawRings(s ports.Surface, c float64, connected bool) {
	vt := v.variant
	style := vt.RingIdle
	switch {
	case v.active:
		style = vt.RingActive
	case connected:
		style = vt.RingConnected
	}

	wobblePhase := v.phase
	if vt.RingBreath {
		wobblePhase = v.breath
	}

	for k := 0; k < vt.Rings; k++ {
		opacity := style.Base - float64(k)*style.Step
		if v.active && vt.RingFollowsPulse {
			opacity *= v.pulse
		}
		if opacity <= 0 {
			continue
		}
		diameter := v.size - float64(k)*v.size*vt.RingSpacing
		scale := 1 + math.Sin(wobblePhase+float64(k)*vt.RingPhase)*vt.RingWobble
		s.StrokeCircle(c, c, diameter/2*scale, ringWidth, ports.Solid(withAlpha(style.Color, opacity)))
	}
}

// radialFade is white at alpha a in the centre fading to transparent at 70% of r.
func radialFade(x, y, r, r0, a float64) ports.Paint {
	return ports.WithGradient(&ports.Gradient{
		Kind: ports.GradientRadial,
		X0:   x,
		Y0:   y,
		R0:   r0,
		X1:   x,
		Y1:   y,
		R1:   r,
		Stops: []ports.ColorStop{
			{Offset: 0, Color: withAlpha(white, a)},
			{Offset: glowExtent, Color: withAlpha(white, 0)},
		},
	})
}

// Reset zeroes the levels and the animation state.
func (v *Visualizer) Reset() {
	v.levels.Reset()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.smoothed = Levels{}
	v.phase, v.breath, v.rotation = 0, 0, 0
	v.pulse = v.variant.Pulse.Initial
}

// Dispose stops the visualizer. Tick and Draw become no-ops.
func (v *Visualizer) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	v.disposed = true
	v.logger.Debug("visualizer disposed")
}
