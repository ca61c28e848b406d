package blackhole

import (
	"image/color"
	"math"

	"github.com/tejashwikalptaru/singularity/internal/ports"
)

func radial(x, y, r0, r1 float64, stops ...ports.ColorStop) ports.Paint {
	return ports.WithGradient(&ports.Gradient{
		Kind:  ports.GradientRadial,
		X0:    x,
		Y0:    y,
		R0:    r0,
		X1:    x,
		Y1:    y,
		R1:    r1,
		Stops: stops,
	})
}

func stop(offset float64, c color.NRGBA) ports.ColorStop {
	return ports.ColorStop{Offset: offset, Color: c}
}

// AuraPulse is the slow breathing of the glow layers at simulation time t.
func AuraPulse(t float64) float64 {
	return 0.7 + 0.3*math.Sin(t*0.5)
}

// drawGlow paints the analytic layers around the singularity: the dark base
// glow, the blue inner and violet outer auras, the horizon disk and the
// accretion ring. The outer aura is the widest soft layer and is skipped when
// blur is disabled.
func drawGlow(s ports.Surface, geo Geometry, t float64, blur bool) {
	r := geo.Radius
	if r <= 0 {
		return
	}
	fx, fy := geo.Focal.X, geo.Focal.Y
	pulse := AuraPulse(t)

	s.FillCircle(fx, fy, r*3, radial(fx, fy, r*0.1, r*3,
		stop(0, rgba(0, 0, 0, 1)),
		stop(0.4, rgba(0, 0, 0, 1)),
		stop(0.5, rgba(30, 30, 40, 0.3)),
		stop(0.7, rgba(20, 20, 30, 0.1)),
		stop(1, rgba(0, 0, 0, 0)),
	))

	s.FillCircle(fx, fy, r*1.8, radial(fx, fy, r*0.9, r*1.8,
		stop(0, rgba(100, 170, 255, 0)),
		stop(0.5, rgba(70, 120, 255, 0.05*pulse)),
		stop(1, rgba(50, 100, 255, 0)),
	))

	if blur {
		auraSize := r * (2 + pulse*0.5)
		s.FillCircle(fx, fy, auraSize, radial(fx, fy, r*1.5, auraSize,
			stop(0, rgba(130, 80, 255, 0)),
			stop(0.5, rgba(100, 50, 200, 0.03*pulse)),
			stop(1, rgba(80, 30, 180, 0)),
		))
	}

	s.FillCircle(fx, fy, r, ports.Solid(rgba(0, 0, 0, 1)))

	s.StrokeCircle(fx, fy, r*1.2, 1.5, radial(fx, fy, r, r*1.5,
		stop(0, rgba(255, 255, 255, 0.4*pulse)),
		stop(0.3, rgba(220, 220, 255, 0.3*pulse)),
		stop(0.7, rgba(180, 180, 255, 0.1*pulse)),
		stop(1, rgba(255, 255, 255, 0)),
	))
}
