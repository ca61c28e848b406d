package raster

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

var (
	red         = color.NRGBA{R: 255, A: 255}
	transparent = color.RGBA{}
)

func TestSurface_SizeIsLogical(t *testing.T) {
	s := NewSurface(200, 100, 2)
	w, h := s.Size()
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 50.0, h)
	assert.Equal(t, 2.0, s.DevicePixelRatio())

	s.Resize(10, 10, 0)
	assert.Equal(t, 1.0, s.DevicePixelRatio())
}

func TestSurface_FillCircle(t *testing.T) {
	s := NewSurface(40, 40, 2)
	s.FillCircle(10, 10, 5, ports.Solid(red))

	img := s.Image()
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(20, 20), "centre in device pixels")
	assert.Equal(t, transparent, img.RGBAAt(1, 1))
	assert.Equal(t, transparent, img.RGBAAt(20, 33))
}

func TestSurface_StrokeCircleLeavesHole(t *testing.T) {
	s := NewSurface(50, 50, 1)
	s.StrokeCircle(25, 25, 15, 4, ports.Solid(red))

	img := s.Image()
	assert.Equal(t, transparent, img.RGBAAt(25, 25))
	assert.Equal(t, uint8(255), img.RGBAAt(40, 25).A)
	assert.Equal(t, transparent, img.RGBAAt(45, 25))
}

func TestSurface_OverlappingShapesDoNotDoubleCover(t *testing.T) {
	s := NewSurface(30, 30, 1)
	half := color.NRGBA{R: 255, A: 128}
	s.Polyline([]domain.Point{{X: 5, Y: 15}, {X: 15, Y: 15}, {X: 25, Y: 15}}, 6, ports.CapRound, ports.Solid(half))

	// the shared joint is covered by two segments and a cap
	assert.InDelta(t, 128, float64(s.Image().RGBAAt(15, 15).A), 2)
}

func TestSurface_LineCaps(t *testing.T) {
	butt := NewSurface(30, 30, 1)
	butt.Line(10, 15, 20, 15, 6, ports.CapButt, ports.Solid(red))
	assert.Equal(t, transparent, butt.Image().RGBAAt(8, 15))
	assert.Equal(t, uint8(255), butt.Image().RGBAAt(15, 15).A)

	round := NewSurface(30, 30, 1)
	round.Line(10, 15, 20, 15, 6, ports.CapRound, ports.Solid(red))
	assert.Equal(t, uint8(255), round.Image().RGBAAt(8, 15).A)
}

func TestSurface_FillEllipseRotated(t *testing.T) {
	s := NewSurface(60, 60, 1)
	s.FillEllipse(30, 30, 20, 4, math.Pi/2, ports.Solid(red))

	img := s.Image()
	assert.Equal(t, uint8(255), img.RGBAAt(30, 45).A, "major axis is vertical")
	assert.Equal(t, transparent, img.RGBAAt(45, 30))
}

func TestSurface_RadialGradient(t *testing.T) {
	s := NewSurface(41, 41, 1)
	s.FillCircle(20.5, 20.5, 20, ports.WithGradient(&ports.Gradient{
		Kind: ports.GradientRadial,
		X0:   20.5,
		Y0:   20.5,
		X1:   20.5,
		Y1:   20.5,
		R1:   20,
		Stops: []ports.ColorStop{
			{Offset: 0, Color: color.NRGBA{R: 255, A: 255}},
			{Offset: 1, Color: color.NRGBA{B: 255, A: 255}},
		},
	}))

	centre := s.Image().RGBAAt(20, 20)
	assert.Greater(t, centre.R, uint8(240))
	edge := s.Image().RGBAAt(38, 20)
	assert.Greater(t, edge.B, edge.R)
}

func TestSampleStops(t *testing.T) {
	stops := []ports.ColorStop{
		{Offset: 0.2, Color: color.NRGBA{R: 0, A: 0}},
		{Offset: 0.6, Color: color.NRGBA{R: 200, A: 100}},
	}
	assert.Equal(t, stops[0].Color, sampleStops(stops, 0))
	assert.Equal(t, color.NRGBA{R: 100, A: 50}, sampleStops(stops, 0.4))
	assert.Equal(t, stops[1].Color, sampleStops(stops, 0.9))
	assert.Equal(t, color.NRGBA{}, sampleStops(nil, 0.5))
}

func TestGradientOffset(t *testing.T) {
	lin := &ports.Gradient{Kind: ports.GradientLinear, X0: 0, Y0: 0, X1: 10, Y1: 0}
	assert.Equal(t, 0.5, gradientOffset(lin, 5, 3))
	assert.Equal(t, 1.0, gradientOffset(lin, 20, 0))
	assert.Equal(t, 0.0, gradientOffset(lin, -5, 0))

	rad := &ports.Gradient{Kind: ports.GradientRadial, X1: 0, Y1: 0, R0: 10, R1: 20}
	assert.Equal(t, 0.0, gradientOffset(rad, 5, 0))
	assert.Equal(t, 0.5, gradientOffset(rad, 15, 0))
}

func TestSurface_FillAndClear(t *testing.T) {
	s := NewSurface(4, 4, 1)
	s.Clear(color.Black)
	s.Fill(ports.Solid(color.NRGBA{R: 255, G: 255, B: 255, A: 128}))
	px := s.Image().RGBAAt(1, 1)
	assert.InDelta(t, 128, float64(px.R), 1)
	assert.Equal(t, uint8(255), px.A)

	snap := s.Snapshot()
	s.Clear(color.Transparent)
	assert.Equal(t, px, snap.RGBAAt(1, 1))
	assert.Equal(t, transparent, s.Image().RGBAAt(1, 1))
}

func TestSurface_IgnoresDegenerateInput(t *testing.T) {
	s := NewSurface(10, 10, 1)
	s.FillCircle(5, 5, 0, ports.Solid(red))
	s.FillCircle(math.NaN(), 5, 3, ports.Solid(red))
	s.Polyline([]domain.Point{{X: 1, Y: 1}}, 2, ports.CapRound, ports.Solid(red))
	s.Polyline([]domain.Point{{X: 1, Y: 1}, {X: math.Inf(1), Y: 1}}, 2, ports.CapRound, ports.Solid(red))
	s.FillCircle(5, 5, 3, ports.Solid(color.NRGBA{R: 255}))
	s.FillCircle(500, 500, 3, ports.Solid(red))

	for _, v := range s.Image().Pix {
		require.Zero(t, v)
	}
}
