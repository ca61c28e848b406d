package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// gradientImage evaluates a ports.Gradient per device pixel so it can be used
// as the source image of a rasterizer draw.
type gradientImage struct {
	g      *ports.Gradient
	dpr    float64
	bounds image.Rectangle
}

func (gi *gradientImage) ColorModel() color.Model { return color.NRGBAModel }

func (gi *gradientImage) Bounds() image.Rectangle { return gi.bounds }

func (gi *gradientImage) At(x, y int) color.Color {
	// pixel centre in logical units
	lx := (float64(x) + 0.5) / gi.dpr
	ly := (float64(y) + 0.5) / gi.dpr
	return sampleStops(gi.g.Stops, gradientOffset(gi.g, lx, ly))
}

// gradientOffset returns the normalized position of (x, y) along g.
// Radial gradients are measured from the end circle's centre, which matches
// the concentric gradients the renderers use.
func gradientOffset(g *ports.Gradient, x, y float64) float64 {
	var t float64
	switch g.Kind {
	case ports.GradientRadial:
		span := g.R1 - g.R0
		if span <= 0 {
			return 1
		}
		t = (math.Hypot(x-g.X1, y-g.Y1) - g.R0) / span
	default:
		dx, dy := g.X1-g.X0, g.Y1-g.Y0
		l2 := dx*dx + dy*dy
		if l2 == 0 {
			return 0
		}
		t = ((x-g.X0)*dx + (y-g.Y0)*dy) / l2
	}
	return math.Max(0, math.Min(1, t))
}

// sampleStops linearly interpolates the straight-alpha colour at offset t.
// Offsets before the first stop take its colour, after the last stop the last one.
func sampleStops(stops []ports.ColorStop, t float64) color.NRGBA {
	switch len(stops) {
	case 0:
		return color.NRGBA{}
	case 1:
		return stops[0].Color
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		f := (t - a.Offset) / span
		return color.NRGBA{
			R: mix(a.Color.R, b.Color.R, f),
			G: mix(a.Color.G, b.Color.G, f),
			B: mix(a.Color.B, b.Color.B, f),
			A: mix(a.Color.A, b.Color.A, f),
		}
	}
	return stops[len(stops)-1].Color
}

func mix(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
