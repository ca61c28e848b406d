// Package domain contains the core simulation models with no external dependencies.
// This package defines the entities shared by the black-hole engine, the voice
// visualizers and the adapters that feed or present them.
package domain

// Point is a position in logical (CSS-pixel) coordinates.
type Point struct {
	X, Y float64
}

// Viewport describes the drawing area handed to the engine.
// Width and Height are device pixels; DevicePixelRatio converts them to logical units.
type Viewport struct {
	Width            int
	Height           int
	DevicePixelRatio float64
}

// LogicalSize returns the viewport size in logical units.
func (v Viewport) LogicalSize() (w, h float64) {
	dpr := v.DevicePixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	return float64(v.Width) / dpr, float64(v.Height) / dpr
}

// Valid reports whether the viewport can be rendered into.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 && v.DevicePixelRatio > 0
}

// DeviceSignals are the host capability hints used to derive a PerformanceProfile.
// Zero values mean "unknown" and never count against the device.
type DeviceSignals struct {
	// Width and Height are the logical viewport size.
	Width  float64
	Height float64

	DevicePixelRatio float64

	// UserAgent is matched against known mobile and low-end device patterns.
	UserAgent string

	// DeviceMemoryGB is the approximate RAM in gigabytes (0 if unknown).
	DeviceMemoryGB float64

	// HardwareConcurrency is the number of logical CPUs (0 if unknown).
	HardwareConcurrency int
}

// QualityTier is a coarse performance level. Lower tiers render less.
type QualityTier int

// Quality tiers, ordered from most to least expensive.
const (
	TierDesktop QualityTier = iota
	TierMobile
	TierLow
)

// String returns the tier name.
func (t QualityTier) String() string {
	switch t {
	case TierDesktop:
		return "desktop"
	case TierMobile:
		return "mobile"
	case TierLow:
		return "low"
	default:
		return "unknown"
	}
}

// PerformanceProfile holds the rendering budget derived from device signals.
// It is an immutable value; a resize or capability re-check produces a new one.
type PerformanceProfile struct {
	Tier                    QualityTier
	IsMobile                bool
	IsLowPerformance        bool
	ParticleCount           int
	FrameRateCap            int
	EnableComplexAnimations bool
	EnableParticleEffects   bool
	EnableBlur              bool
	DevicePixelRatio        float64
}

// FrameInterval returns the minimum time between executed frames in milliseconds.
func (p PerformanceProfile) FrameInterval() float64 {
	if p.FrameRateCap <= 0 {
		return 1000.0 / 60.0
	}
	return 1000.0 / float64(p.FrameRateCap)
}

// Particle is one orbiting body of the accretion swirl.
// Particles are never destroyed; they are recycled at the event horizon.
type Particle struct {
	X, Y        float64
	Angle       float64
	Distance    float64
	Size        float64
	SpeedFactor float64 // [0.5, 1.0]
	Alpha       float64 // [0.4, 1.0]
	Hue         float64 // 0 for white, otherwise an offset from the base blue
	Trail       []Point // most recent first
	TrailLength int
	PulseRate   float64
	PulseOffset float64
}

// BackgroundStar is a star whose light is bent by the singularity.
// U and V are the normalized placement and never change; OriginalX/Y follow
// the viewport and DisplayX/Y are recomputed every frame.
type BackgroundStar struct {
	U, V        float64
	OriginalX   float64
	OriginalY   float64
	DisplayX    float64
	DisplayY    float64
	Size        float64
	BaseOpacity float64
	PulseSpeed  float64
	PulseOffset float64
}

// TwinkleStar is a foreground star drawn without lensing.
type TwinkleStar struct {
	U, V        float64
	X, Y        float64
	Size        float64
	BaseOpacity float64
	PulseSpeed  float64
	PulseOffset float64
}

// Flare is a short-lived bright event on the accretion disk.
type Flare struct {
	X, Y        float64
	Size        float64
	BaseOpacity float64
	Angle       float64
	Life        float64 // seconds
	MaxLife     float64 // seconds
	Hue         float64
	VX, VY      float64
	HasTrail    bool
	Trail       []Point
	TrailLength int
}

// GridPoint is one vertex of the spacetime distortion lattice.
type GridPoint struct {
	OriginalX        float64
	OriginalY        float64
	DisplayX         float64
	DisplayY         float64
	DistortionAmount float64
}

// VoiceStatus is the state of a voice session as shown to the user.
type VoiceStatus string

// Voice session states.
const (
	VoiceIdle       VoiceStatus = "idle"
	VoiceConnecting VoiceStatus = "connecting"
	VoiceConnected  VoiceStatus = "connected"
	VoiceSpeaking   VoiceStatus = "speaking"
	VoiceListening  VoiceStatus = "listening"
)

// Speaker identifies which side of a voice session is talking.
type Speaker int

// Speakers.
const (
	SpeakerNone Speaker = iota
	SpeakerAssistant
	SpeakerUser
)

// String returns the speaker name.
func (s Speaker) String() string {
	switch s {
	case SpeakerAssistant:
		return "assistant"
	case SpeakerUser:
		return "user"
	default:
		return "none"
	}
}
