package voiceviz

import "image/color"

// Harmonic is one sinusoidal term of the wave radius:
// sin(phase·Frequency + band·Offset) · size · Amplitude.
type Harmonic struct {
	Frequency float64
	Offset    float64
	Amplitude float64
}

// Layer is one concentric stroke drawn per band. Radius scales the wave
// radius; Width is a fraction of the visualizer size.
type Layer struct {
	Radius  float64
	Opacity float64
	Width   float64
}

// Pulse drives the centre scale. A level approaches
// Base + Amplitude·sin(ts/PeriodMs) while active, or
// IdleBase + IdleAmplitude·sin(breath) while idle, at rate Approach.
// The drawn scale is ScaleBase + ScaleGain·level.
type Pulse struct {
	Base          float64
	Amplitude     float64
	PeriodMs      float64
	IdleBase      float64
	IdleAmplitude float64
	Approach      float64
	ScaleBase     float64
	ScaleGain     float64
	Initial       float64
}

// RingStyle is the opacity of breathing ring k as Base − k·Step, drawn in Color.
type RingStyle struct {
	Base  float64
	Step  float64
	Color color.NRGBA
}

// Variant is the parameter table of one visualizer flavour.
type Variant struct {
	Name string

	SmoothingActive float64
	SmoothingIdle   float64

	InnerRadius float64 // fraction of size
	Gain        float64 // radius per unit of smoothed level

	Harmonics []Harmonic
	Layers    []Layer

	PhaseStep   float64
	BreathStep  float64
	IdleOpacity float64

	// RotationActive and RotationIdle are degrees added per tick.
	RotationActive float64
	RotationIdle   float64

	Pulse Pulse

	// Glow is the alpha of the outer radial glow while active. With
	// GlowFollowsPulse it is multiplied by the pulse level.
	Glow             float64
	GlowFollowsPulse bool

	Rings       int
	RingSpacing float64 // diameter step as a fraction of size
	RingWobble  float64 // scale amplitude
	RingPhase   float64 // phase offset per ring
	// RingBreath selects the breathing phase for ring wobble instead of the wave phase.
	RingBreath bool
	// RingFollowsPulse multiplies the active ring opacity by the pulse level.
	RingFollowsPulse bool
	RingActive       RingStyle
	RingConnected    RingStyle
	RingIdle         RingStyle

	// CoreActive and CoreIdle fill the centre disc; CoreConnectedBorder
	// outlines it while connected but silent.
	CoreActive          color.NRGBA
	CoreIdle            color.NRGBA
	CoreConnectedBorder color.NRGBA
	// CoreGlowActive and CoreGlowConnected are the inner glow alphas. With
	// CoreGlowFollowsPulse the active glow is multiplied by the pulse level.
	CoreGlowActive       float64
	CoreGlowConnected    float64
	CoreGlowFollowsPulse bool

	// ShowConnecting draws the three bouncing dots while the session connects.
	ShowConnecting bool
}

var (
	white   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	gray400 = color.NRGBA{R: 156, G: 163, B: 175, A: 255}
	gray500 = color.NRGBA{R: 107, G: 114, B: 128, A: 255}
	gray600 = color.NRGBA{R: 75, G: 85, B: 99, A: 255}
	gray700 = color.NRGBA{R: 55, G: 65, B: 81, A: 255}
	gray800 = color.NRGBA{R: 31, G: 41, B: 55, A: 255}
	gray900 = color.NRGBA{R: 17, G: 24, B: 39, A: 255}
	yellow  = color.NRGBA{R: 250, G: 204, B: 21, A: 255}
)

// AI is the assistant visualizer: four layers, four harmonics, slow rotation
// and a pulsing core.
var AI = Variant{
	Name:            "ai",
	SmoothingActive: 0.25,
	SmoothingIdle:   0.1,
	InnerRadius:     0.28,
	Gain:            0.5,
	Harmonics: []Harmonic{
		{Frequency: 1, Offset: 0.3, Amplitude: 0.07},
		{Frequency: 1.6, Offset: 0.2, Amplitude: 0.04},
		{Frequency: 0.7, Offset: 0.4, Amplitude: 0.03},
		{Frequency: 2.1, Offset: 0.15, Amplitude: 0.02},
	},
	Layers: []Layer{
		{Radius: 1, Opacity: 0.95, Width: 0.01},
		{Radius: 0.8, Opacity: 0.75, Width: 0.009},
		{Radius: 0.6, Opacity: 0.55, Width: 0.007},
		{Radius: 0.4, Opacity: 0.35, Width: 0.005},
	},
	PhaseStep:      0.08,
	BreathStep:     0.03,
	IdleOpacity:    0.12,
	RotationActive: 1,
	RotationIdle:   0.2,
	Pulse: Pulse{
		Base:          1,
		Amplitude:     0.12,
		PeriodMs:      400,
		IdleBase:      1,
		IdleAmplitude: 0.03,
		Approach:      0.15,
		ScaleGain:     1,
		Initial:       1,
	},
	Glow:           0.08,
	Rings:          4,
	RingSpacing:    0.06,
	RingWobble:     0.03,
	RingPhase:      0.5,
	RingBreath:     true,
	RingActive:     RingStyle{Base: 1, Step: 0.2, Color: withAlpha(white, 0.3)},
	RingConnected:  RingStyle{Base: 0.6, Step: 0.15, Color: withAlpha(white, 0.15)},
	RingIdle:       RingStyle{Base: 0.3, Step: 0.1, Color: withAlpha(gray700, 0.2)},

	CoreActive:          gray900,
	CoreIdle:            gray800,
	CoreConnectedBorder: gray400,
	CoreGlowActive:      0.1,
	CoreGlowConnected:   0.05,
	ShowConnecting:      true,
}

// User is the caller visualizer: three layers, three harmonics, no rotation
// and a core that swells with the pulse intensity.
var User = Variant{
	Name:            "user",
	SmoothingActive: 0.2,
	SmoothingIdle:   0.1,
	InnerRadius:     0.32,
	Gain:            0.4,
	Harmonics: []Harmonic{
		{Frequency: 1, Offset: 0.2, Amplitude: 0.05},
		{Frequency: 1.5, Offset: 0.15, Amplitude: 0.035},
		{Frequency: 0.8, Offset: 0.25, Amplitude: 0.028},
	},
	Layers: []Layer{
		{Radius: 1, Opacity: 0.9, Width: 0.01},
		{Radius: 0.85, Opacity: 0.7, Width: 0.007},
		{Radius: 0.7, Opacity: 0.5, Width: 0.005},
	},
	PhaseStep:   0.05,
	IdleOpacity: 0.15,
	Pulse: Pulse{
		Base:      0.7,
		Amplitude: 0.3,
		PeriodMs:  300,
		Approach:  0.1,
		ScaleBase: 1,
		ScaleGain: 0.08,
	},
	Glow:             0.15,
	GlowFollowsPulse: true,
	Rings:            3,
	RingSpacing:      0.07,
	RingWobble:       0.02,
	RingPhase:        1,
	RingFollowsPulse: true,
	RingActive:       RingStyle{Base: 1, Step: 0.25, Color: withAlpha(white, 0.25)},
	RingConnected:    RingStyle{Base: 0.2, Color: withAlpha(gray700, 0.3)},
	RingIdle:         RingStyle{Base: 0.2, Color: withAlpha(gray700, 0.3)},

	CoreActive:           gray800,
	CoreIdle:             gray800,
	CoreConnectedBorder:  gray600,
	CoreGlowActive:       0.1,
	CoreGlowFollowsPulse: true,
}

// ResponsiveSize is the visualizer edge length for a host window width.
func ResponsiveSize(windowWidth float64) float64 {
	if windowWidth < 640 {
		return 240
	}
	return 280
}
