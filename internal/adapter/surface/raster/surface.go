// Package raster provides a software ports.Surface backed by an image.RGBA.
// Shapes are scan-converted with golang.org/x/image/vector and composited
// with Porter-Duff "over".
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498307936

// Surface draws logical coordinates into a device-pixel image.
//
// Thread-safety: not safe for concurrent use. Callers that present the image
// from another goroutine should take a Snapshot.
type Surface struct {
	img *image.RGBA
	dpr float64
	z   *vector.Rasterizer
}

// NewSurface creates a width×height device-pixel surface. dpr converts
// logical units to device pixels; non-positive values mean 1.
func NewSurface(width, height int, dpr float64) *Surface {
	s := &Surface{z: vector.NewRasterizer(0, 0)}
	s.Resize(width, height, dpr)
	return s
}

// Resize reallocates the backing image. The content is cleared.
func (s *Surface) Resize(width, height int, dpr float64) {
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	s.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	s.dpr = dpr
}

// Image returns the backing image. It is reused across frames.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Snapshot returns a copy of the current pixels.
func (s *Surface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// DevicePixelRatio returns the logical to device scale.
func (s *Surface) DevicePixelRatio() float64 {
	return s.dpr
}

// Clear sets every pixel to c, replacing what was there.
func (s *Surface) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Size implements ports.Surface.
func (s *Surface) Size() (float64, float64) {
	b := s.img.Bounds()
	return float64(b.Dx()) / s.dpr, float64(b.Dy()) / s.dpr
}

// Fill implements ports.Surface.
func (s *Surface) Fill(p ports.Paint) {
	src, ok := s.source(p)
	if !ok {
		return
	}
	draw.Draw(s.img, s.img.Bounds(), src, image.Point{}, draw.Over)
}

// FillCircle implements ports.Surface.
func (s *Surface) FillCircle(x, y, r float64, p ports.Paint) {
	if !(r > 0) {
		return
	}
	x, y, r = x*s.dpr, y*s.dpr, r*s.dpr
	s.fill(x-r, y-r, x+r, y+r, p, func(pn pen) {
		pn.circle(x, y, r, false)
	})
}

// StrokeCircle implements ports.Surface.
func (s *Surface) StrokeCircle(x, y, r, width float64, p ports.Paint) {
	if !(r > 0) || !(width > 0) {
		return
	}
	x, y, r = x*s.dpr, y*s.dpr, r*s.dpr
	half := width * s.dpr / 2
	outer := r + half
	s.fill(x-outer, y-outer, x+outer, y+outer, p, func(pn pen) {
		pn.circle(x, y, outer, false)
		if inner := r - half; inner > 0 {
			pn.circle(x, y, inner, true)
		}
	})
}

// FillEllipse implements ports.Surface.
func (s *Surface) FillEllipse(x, y, rx, ry, rotation float64, p ports.Paint) {
	if !(rx > 0) || !(ry > 0) {
		return
	}
	x, y, rx, ry = x*s.dpr, y*s.dpr, rx*s.dpr, ry*s.dpr
	ext := math.Max(rx, ry)
	s.fill(x-ext, y-ext, x+ext, y+ext, p, func(pn pen) {
		pn.ellipse(x, y, rx, ry, rotation)
	})
}

// Line implements ports.Surface.
func (s *Surface) Line(x0, y0, x1, y1, width float64, lineCap ports.LineCap, p ports.Paint) {
	s.Polyline([]domain.Point{{X: x0, Y: y0}, {X: x1, Y: y1}}, width, lineCap, p)
}

// Polyline implements ports.Surface. Round caps also round the joins.
func (s *Surface) Polyline(pts []domain.Point, width float64, lineCap ports.LineCap, p ports.Paint) {
	if len(pts) < 2 || !(width > 0) {
		return
	}
	half := width * s.dpr / 2

	dev := make([]domain.Point, len(pts))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, pt := range pts {
		if !finite(pt.X, pt.Y) {
			return
		}
		d := domain.Point{X: pt.X * s.dpr, Y: pt.Y * s.dpr}
		dev[i] = d
		minX, minY = math.Min(minX, d.X), math.Min(minY, d.Y)
		maxX, maxY = math.Max(maxX, d.X), math.Max(maxY, d.Y)
	}

	s.fill(minX-half, minY-half, maxX+half, maxY+half, p, func(pn pen) {
		for i := 1; i < len(dev); i++ {
			pn.segment(dev[i-1], dev[i], half)
		}
		if lineCap == ports.CapRound {
			for _, d := range dev {
				pn.circle(d.X, d.Y, half, false)
			}
		}
	})
}

// fill rasterizes the path built by fn inside the device-space box and
// composites p through it.
func (s *Surface) fill(minX, minY, maxX, maxY float64, p ports.Paint, fn func(pen)) {
	if !finite(minX, minY, maxX, maxY) {
		return
	}
	src, ok := s.source(p)
	if !ok {
		return
	}
	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	).Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}

	s.z.Reset(r.Dx(), r.Dy())
	s.z.DrawOp = draw.Over
	fn(pen{z: s.z, ox: float64(r.Min.X), oy: float64(r.Min.Y)})
	s.z.Draw(s.img, r, src, r.Min)
}

func (s *Surface) source(p ports.Paint) (image.Image, bool) {
	if p.Gradient != nil {
		if len(p.Gradient.Stops) == 0 {
			return nil, false
		}
		return &gradientImage{g: p.Gradient, dpr: s.dpr, bounds: s.img.Bounds()}, true
	}
	if p.Color.A == 0 {
		return nil, false
	}
	return image.NewUniform(p.Color), true
}

// pen issues path commands relative to the rasterizer origin.
type pen struct {
	z      *vector.Rasterizer
	ox, oy float64
}

func (p pen) moveTo(x, y float64) {
	p.z.MoveTo(float32(x-p.ox), float32(y-p.oy))
}

func (p pen) lineTo(x, y float64) {
	p.z.LineTo(float32(x-p.ox), float32(y-p.oy))
}

func (p pen) cubeTo(bx, by, cx, cy, dx, dy float64) {
	p.z.CubeTo(
		float32(bx-p.ox), float32(by-p.oy),
		float32(cx-p.ox), float32(cy-p.oy),
		float32(dx-p.ox), float32(dy-p.oy),
	)
}

// circle adds a closed circle. Shapes of the same winding union without
// double coverage; reverse cuts a hole.
func (p pen) circle(x, y, r float64, reverse bool) {
	p.ellipseAt(x, y, r, r, 0, reverse)
}

func (p pen) ellipse(x, y, rx, ry, rotation float64) {
	p.ellipseAt(x, y, rx, ry, rotation, false)
}

func (p pen) ellipseAt(x, y, rx, ry, rotation float64, reverse bool) {
	cos, sin := math.Cos(rotation), math.Sin(rotation)
	at := func(u, v float64) (float64, float64) {
		return x + u*rx*cos - v*ry*sin, y + u*rx*sin + v*ry*cos
	}

	// quarter arcs through (1,0) (0,-1) (-1,0) (0,1), or the reverse
	dir := -1.0
	if reverse {
		dir = 1
	}
	p.moveTo(at(1, 0))
	quadrants := [4][2]float64{{0, dir}, {-1, 0}, {0, -dir}, {1, 0}}
	prevU, prevV := 1.0, 0.0
	for _, q := range quadrants {
		u, v := q[0], q[1]
		b1x, b1y := at(prevU+kappa*u, prevV+kappa*v)
		b2x, b2y := at(u+kappa*prevU, v+kappa*prevV)
		ex, ey := at(u, v)
		p.cubeTo(b1x, b1y, b2x, b2y, ex, ey)
		prevU, prevV = u, v
	}
	p.z.ClosePath()
}

// segment adds the rectangle of half-width half around a→b. The corner order
// gives every segment the same winding as circle.
func (p pen) segment(a, b domain.Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*half, dx/l*half
	p.moveTo(a.X+nx, a.Y+ny)
	p.lineTo(b.X+nx, b.Y+ny)
	p.lineTo(b.X-nx, b.Y-ny)
	p.lineTo(a.X-nx, a.Y-ny)
	p.z.ClosePath()
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
