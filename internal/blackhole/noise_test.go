package blackhole

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tejashwikalptaru/singularity/internal/testutil"
)

func TestNoise_Pure(t *testing.T) {
	n := NewNoiseField(testutil.NewRand(42))

	for _, p := range [][2]float64{{0.3, 0.7}, {12.25, -4.5}, {-300.1, 999.9}, {1e6 + 0.5, 3.3}} {
		first := n.Noise(p[0], p[1])
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, n.Noise(p[0], p[1]), "noise(%v) changed between calls", p)
		}
	}
}

func TestNoise_LatticePointsAreMidpoint(t *testing.T) {
	// Every gradient vanishes at its own corner, so integer inputs map to 0.5
	n := NewNoiseField(testutil.NewRand(7))
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			assert.InDelta(t, 0.5, n.Noise(float64(x), float64(y)), 1e-12)
		}
	}
}

func TestNoise_FiniteEverywhere(t *testing.T) {
	n := NewNoiseField(testutil.ConstRand(0.9999))

	for x := -20.0; x < 20; x += 0.37 {
		for y := -20.0; y < 20; y += 0.41 {
			v := n.Noise(x, y)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			assert.GreaterOrEqual(t, v, -0.5)
			assert.LessOrEqual(t, v, 1.5)
		}
	}

	assert.Equal(t, 0.5, n.Noise(math.NaN(), 1))
	assert.Equal(t, 0.5, n.Noise(1, math.Inf(1)))
}

func TestNoise_Smooth(t *testing.T) {
	n := NewNoiseField(testutil.NewRand(3))

	// Small steps give small changes
	prev := n.Noise(5.0, 5.0)
	for x := 5.001; x < 6; x += 0.001 {
		v := n.Noise(x, 5.0)
		assert.Less(t, math.Abs(v-prev), 0.01)
		prev = v
	}
}

func TestFadeEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, fade(0))
	assert.Equal(t, 1.0, fade(1))
	assert.InDelta(t, 0.5, fade(0.5), 1e-12)
}
