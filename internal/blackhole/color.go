package blackhole

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// alpha8 converts an opacity in [0,1] to an 8-bit alpha, clamping out-of-range
// and non-finite values.
func alpha8(a float64) uint8 {
	if math.IsNaN(a) || a <= 0 {
		return 0
	}
	if a >= 1 {
		return 255
	}
	return uint8(math.Round(a * 255))
}

// rgba builds a straight-alpha colour.
func rgba(r, g, b uint8, a float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: alpha8(a)}
}

func white(a float64) color.NRGBA {
	return rgba(255, 255, 255, a)
}

// hsla builds a colour from hue in degrees and saturation/lightness in [0,1].
// Hues outside [0,360) wrap around the colour wheel.
func hsla(h, s, l, a float64) color.NRGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha8(a)}
}
