// Package ports define the Surface interface for immediate-mode drawing.
// The engine and visualizers only issue primitive draw calls; adapters decide how
// they reach pixels (software raster, terminal cells, recording for tests).
package ports

import (
	"image/color"

	"github.com/tejashwikalptaru/singularity/internal/domain"
)

// LineCap is the end style of stroked lines.
type LineCap int

// Line cap styles.
const (
	CapButt LineCap = iota
	CapRound
)

// GradientKind selects between linear and radial gradients.
type GradientKind int

// Gradient kinds.
const (
	GradientLinear GradientKind = iota
	GradientRadial
)

// ColorStop is one colour at a normalized offset along a gradient.
type ColorStop struct {
	Offset float64
	Color  color.NRGBA
}

// Gradient describes a linear gradient from (X0,Y0) to (X1,Y1), or a radial
// gradient between the circles (X0,Y0,R0) and (X1,Y1,R1). Coordinates are logical.
type Gradient struct {
	Kind   GradientKind
	X0, Y0 float64
	R0     float64
	X1, Y1 float64
	R1     float64
	Stops  []ColorStop
}

// Paint is either a solid colour or a gradient. A non-nil Gradient wins.
type Paint struct {
	Color    color.NRGBA
	Gradient *Gradient
}

// Solid returns a paint of a single colour.
func Solid(c color.NRGBA) Paint {
	return Paint{Color: c}
}

// WithGradient returns a paint backed by g.
func WithGradient(g *Gradient) Paint {
	return Paint{Gradient: g}
}

// Surface is the two-dimensional drawing target used by the engine.
// All coordinates and lengths are logical units; implementations apply the
// device pixel ratio themselves.
//
// Implementations are not required to be thread-safe: a surface is drawn by
// exactly one render loop.
type Surface interface {
	// Size returns the logical drawing size.
	Size() (w, h float64)

	// Fill composites p over the whole surface. A low-alpha black fill is the
	// engine's fade-clear.
	Fill(p Paint)

	// FillCircle fills a circle.
	FillCircle(x, y, r float64, p Paint)

	// StrokeCircle strokes the outline of a circle.
	StrokeCircle(x, y, r, width float64, p Paint)

	// FillEllipse fills an ellipse with radii rx, ry rotated by rotation radians.
	FillEllipse(x, y, rx, ry, rotation float64, p Paint)

	// Line strokes a straight segment.
	Line(x0, y0, x1, y1, width float64, lineCap LineCap, p Paint)

	// Polyline strokes connected segments through pts.
	Polyline(pts []domain.Point, width float64, lineCap LineCap, p Paint)
}
