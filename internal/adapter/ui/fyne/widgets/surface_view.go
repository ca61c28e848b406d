// Package widgets provides custom Fyne widgets for the Singularity window.
package widgets

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

var blank = image.NewUniform(color.Transparent)

// SurfaceView presents frames rendered off the UI goroutine.
// Present may be called from any goroutine; the raster is refreshed on the
// Fyne main goroutine.
type SurfaceView struct {
	widget.BaseWidget

	raster *canvas.Raster

	mu        sync.RWMutex
	frame     image.Image
	minSize   fyne.Size
	onResized func(fyne.Size)
}

// NewSurfaceView creates an empty view. onResized, when set, is called with
// the new logical size every time the layout resizes the view.
func NewSurfaceView(onResized func(fyne.Size)) *SurfaceView {
	v := &SurfaceView{onResized: onResized}
	v.raster = canvas.NewRaster(v.render)
	v.raster.ScaleMode = canvas.ImageScaleFastest
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *SurfaceView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize returns the minimum size set with SetMinSize (zero by default).
func (v *SurfaceView) MinSize() fyne.Size {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.minSize
}

// SetMinSize fixes the minimum layout size, used for the fixed-size orbs.
func (v *SurfaceView) SetMinSize(size fyne.Size) {
	v.mu.Lock()
	v.minSize = size
	v.mu.Unlock()
	v.Refresh()
}

// Resize implements fyne.CanvasObject and reports the new size.
func (v *SurfaceView) Resize(size fyne.Size) {
	if size == v.Size() {
		return
	}
	v.BaseWidget.Resize(size)

	v.mu.RLock()
	cb := v.onResized
	v.mu.RUnlock()
	if cb != nil {
		cb(size)
	}
}

// Present shows img on the next redraw. The view keeps the image, so callers
// must hand over a copy they no longer write to.
func (v *SurfaceView) Present(img image.Image) {
	v.mu.Lock()
	v.frame = img
	v.mu.Unlock()

	fyne.Do(v.raster.Refresh)
}

// Frame returns the image currently presented, or nil.
func (v *SurfaceView) Frame() image.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.frame
}

// render is the raster generator. The frame is scaled to the raster size.
func (v *SurfaceView) render(_, _ int) image.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.frame == nil {
		return blank
	}
	return v.frame
}

// Ensure SurfaceView implements the required interfaces
var _ fyne.Widget = (*SurfaceView)(nil)
