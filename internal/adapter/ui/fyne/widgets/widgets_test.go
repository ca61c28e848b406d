package widgets

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceView_PresentAndResize(t *testing.T) {
	test.NewTempApp(t)

	var sizes []fyne.Size
	v := NewSurfaceView(func(size fyne.Size) {
		sizes = append(sizes, size)
	})
	assert.Nil(t, v.Frame())
	assert.Equal(t, blank, v.render(10, 10))

	v.Resize(fyne.NewSize(320, 200))
	v.Resize(fyne.NewSize(320, 200))
	v.Resize(fyne.NewSize(640, 400))
	assert.Equal(t, []fyne.Size{fyne.NewSize(320, 200), fyne.NewSize(640, 400)}, sizes)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	v.Present(img)
	assert.Same(t, img, v.Frame())
	assert.Same(t, img, v.render(640, 400))

	v.SetMinSize(fyne.NewSize(280, 280))
	assert.Equal(t, fyne.NewSize(280, 280), v.MinSize())
}

func TestTappableStack(t *testing.T) {
	test.NewTempApp(t)

	taps, secondary := 0, 0
	var at fyne.Position
	stack := NewTappableStack(widget.NewLabel("orb"), func() {
		taps++
	}, func(pe *fyne.PointEvent) {
		secondary++
		at = pe.Position
	})

	test.Tap(stack)
	test.Tap(stack)
	stack.TappedSecondary(&fyne.PointEvent{Position: fyne.NewPos(3, 4)})

	assert.Equal(t, 2, taps)
	assert.Equal(t, 1, secondary)
	assert.Equal(t, fyne.NewPos(3, 4), at)

	// nil handlers are allowed
	quiet := NewTappableStack(widget.NewLabel(""), nil, nil)
	require.NotPanics(t, func() {
		test.Tap(quiet)
		quiet.TappedSecondary(&fyne.PointEvent{})
	})
}

func TestMarquee(t *testing.T) {
	short := NewMarquee("Ava", 10)
	assert.False(t, short.Scrolls())
	assert.Equal(t, "Ava", short.Rotate())
	assert.Equal(t, "Ava", short.Rotate())

	m := NewMarquee("abcdef", 4)
	require.True(t, m.Scrolls())
	assert.Equal(t, "abcd", m.Text())
	assert.Equal(t, "bcde", m.Rotate())
	assert.Equal(t, "cdef", m.Rotate())
	assert.Equal(t, "def ", m.Rotate())

	// a full cycle returns to the start
	for i := 0; i < 6+len(marqueeGap)-3; i++ {
		m.Rotate()
	}
	assert.Equal(t, "abcd", m.Text())

	assert.Equal(t, "é", NewMarquee("é", 0).Text())
}
