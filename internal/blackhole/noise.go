package blackhole

import (
	"math"

	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const noiseTableSize = 512

// NoiseField is a 2-D gradient noise function over a random permutation table.
// The table is fixed at construction, so Noise is pure for a given instance.
type NoiseField struct {
	perm [noiseTableSize]int
}

// NewNoiseField fills the permutation table from rnd.
func NewNoiseField(rnd ports.Random) *NoiseField {
	n := &NoiseField{}
	for i := range n.perm {
		n.perm[i] = int(math.Floor(rnd.Float64() * 256))
	}
	return n
}

// Noise returns a smooth value in [0,1] for any real (x, y).
func (n *NoiseField) Noise(x, y float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return 0.5
	}

	fx, fy := math.Floor(x), math.Floor(y)
	X := int(fx) & 255
	Y := int(fy) & 255
	x -= fx
	y -= fy

	u := fade(x)
	v := fade(y)

	// X+1 <= 256 and perm values are < 256, so A+1 and B+1 stay below 512
	a := n.perm[X] + Y
	b := n.perm[X+1] + Y

	return lerp(v,
		lerp(u, grad(n.perm[a], x, y), grad(n.perm[b], x-1, y)),
		lerp(u, grad(n.perm[a+1], x, y-1), grad(n.perm[b+1], x-1, y-1)),
	)*0.5 + 0.5
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash int, x, y float64) float64 {
	h := hash & 15

	u := y
	if h < 8 {
		u = x
	}

	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	}

	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
