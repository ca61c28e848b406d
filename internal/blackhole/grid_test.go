package blackhole

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/singularity/internal/adapter/surface/mock"
	"github.com/tejashwikalptaru/singularity/internal/testutil"
)

func TestDistortionGrid_Build(t *testing.T) {
	g := NewDistortionGrid(NewNoiseField(testutil.NewRand(1)), 0)
	g.Build(101, 60)

	cols, rows := g.Dimensions()
	assert.Equal(t, 6, cols)
	assert.Equal(t, 3, rows)

	p, ok := g.At(2, 1)
	require.True(t, ok)
	assert.Equal(t, 40.0, p.OriginalX)
	assert.Equal(t, 20.0, p.OriginalY)
	assert.Equal(t, p.OriginalX, p.DisplayX)

	_, ok = g.At(6, 0)
	assert.False(t, ok)
	_, ok = g.At(-1, 0)
	assert.False(t, ok)
}

func TestDistortionGrid_UpdatePullsTowardsFocal(t *testing.T) {
	g := NewDistortionGrid(NewNoiseField(testutil.NewRand(1)), 1)
	g.Build(400, 400)

	const fx, fy, r = 200.0, 200.0, 24.0
	g.Update(fx, fy, r, 0)

	cols, rows := g.Dimensions()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p, _ := g.At(x, y)
			before := math.Hypot(p.OriginalX-fx, p.OriginalY-fy)
			after := math.Hypot(p.DisplayX-fx, p.DisplayY-fy)

			if before >= r*gridMaxDistortRadii {
				assert.InDelta(t, before, after, 1e-9)
				continue
			}
			if before <= r*2.5 {
				// close points may be pushed through the focal point
				continue
			}
			factor := 1 - before/(r*gridMaxDistortRadii)
			assert.InDelta(t, factor*factor*r*2, p.DistortionAmount, 1e-9)

			// noise scales the pull by at most ±2×20%
			assert.Less(t, after, before)
			assert.InDelta(t, before-p.DistortionAmount, after, p.DistortionAmount*0.41)
		}
	}
}

func TestDistortionGrid_RotatingColumnSubset(t *testing.T) {
	g := NewDistortionGrid(NewNoiseField(testutil.NewRand(1)), 3)
	g.Build(200, 200)

	// t=0.01 -> floor(mod(1, 3)) = 1: only columns 1, 4, 7 refresh
	g.Update(100, 100, 20, 0.01)

	cols, rows := g.Dimensions()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p, _ := g.At(x, y)
			if x%3 != 1 {
				assert.Zero(t, p.DistortionAmount, "column %d should be stale", x)
			}
		}
	}

	p, _ := g.At(4, 5) // (80,100) is 20 from the focal point
	assert.Greater(t, p.DistortionAmount, 0.0)
}

func TestDistortionGrid_SkipsFarPoints(t *testing.T) {
	g := NewDistortionGrid(NewNoiseField(testutil.NewRand(1)), 1)
	g.Build(2000, 40)

	g.Update(0, 0, 2, 0) // cutoff at 40
	p, _ := g.At(50, 1)
	assert.Zero(t, p.DistortionAmount)
	assert.Equal(t, p.OriginalX, p.DisplayX)
}

func TestDistortionGrid_Draw(t *testing.T) {
	g := NewDistortionGrid(NewNoiseField(testutil.NewRand(1)), 1)
	g.Build(400, 400)
	s := mock.NewSurface(400, 400)

	// nothing distorted yet
	g.Draw(s, 200, 200, 24)
	assert.Equal(t, 0, s.Total())

	g.Update(200, 200, 24, 0)
	g.Draw(s, 200, 200, 24)
	lines := s.Count(mock.OpLine)
	assert.Greater(t, lines, 0)
	assert.Equal(t, 0, lines%2, "each point strokes a right and a lower segment")

	for _, c := range s.Calls() {
		assert.Equal(t, gridLineWidth, c.Args[4])
		assert.LessOrEqual(t, c.Paint.Color.A, uint8(13)) // intensity*0.05 <= 0.05
	}

	// zero radius is ignored
	s.Reset()
	g.Draw(s, 200, 200, 0)
	assert.Equal(t, 0, s.Total())
}
