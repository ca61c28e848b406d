package fyne

import (
	"image/color"
	"log/slog"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"

	"github.com/tejashwikalptaru/singularity/internal/adapter/surface/raster"
	"github.com/tejashwikalptaru/singularity/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
	"github.com/tejashwikalptaru/singularity/internal/voiceviz"
)

const indicatorSize = 60

// Orb is one side of the call on screen: a radial voice visualizer with its
// presence indicator in the corner. It satisfies service.LevelSink.
//
// Thread-safety: all methods are safe for concurrent use.
type Orb struct {
	viz       *voiceviz.Visualizer
	indicator *voiceviz.Indicator

	view  *widgets.SurfaceView
	badge *widgets.SurfaceView

	mu         sync.Mutex
	scale      float64
	vizSurface *raster.Surface
	indSurface *raster.Surface
	lastFrame  float64
	drawn      bool
	disposed   bool
}

// NewOrb creates an orb of the given variant and logical edge length.
// scale is the canvas pixel scale used for the backing surfaces.
func NewOrb(log *slog.Logger, variant voiceviz.Variant, rnd ports.Random, size, scale float64) *Orb {
	if !(scale > 0) {
		scale = 1
	}
	o := &Orb{
		viz:       voiceviz.NewVisualizer(log, variant, size),
		indicator: voiceviz.NewIndicator(rnd, indicatorSize),
		view:      widgets.NewSurfaceView(nil),
		badge:     widgets.NewSurfaceView(nil),
		scale:     scale,
	}
	size = o.viz.Size()
	o.vizSurface = raster.NewSurface(deviceLen(size, scale), deviceLen(size, scale), scale)
	o.indSurface = raster.NewSurface(deviceLen(indicatorSize, scale), deviceLen(indicatorSize, scale), scale)
	o.view.SetMinSize(fyneapp.NewSize(float32(size), float32(size)))
	o.badge.SetMinSize(fyneapp.NewSize(indicatorSize, indicatorSize))
	return o
}

func deviceLen(logical, scale float64) int {
	return max(int(logical*scale+0.5), 1)
}

// SetLevels implements service.LevelSink.
func (o *Orb) SetLevels(levels []float64) {
	o.viz.SetLevels(levels)
}

// SetActive implements service.LevelSink. The indicator follows the visualizer.
func (o *Orb) SetActive(active bool) {
	o.viz.SetActive(active)
	o.indicator.SetActive(active)
}

// SetStatus implements service.LevelSink.
func (o *Orb) SetStatus(status domain.VoiceStatus) {
	o.viz.SetStatus(status)
}

// Visualizer returns the wrapped visualizer.
func (o *Orb) Visualizer() *voiceviz.Visualizer {
	return o.viz
}

// SetSize changes the logical edge length, reallocating the surface.
func (o *Orb) SetSize(size float64) error {
	if err := o.viz.Resize(size); err != nil {
		return err
	}
	o.mu.Lock()
	o.vizSurface.Resize(deviceLen(size, o.scale), deviceLen(size, o.scale), o.scale)
	o.mu.Unlock()

	o.view.SetMinSize(fyneapp.NewSize(float32(size), float32(size)))
	return nil
}

// Render advances both animations to ts (ms) and presents a new frame.
// Frames closer than minFrameMs to the previous one are skipped.
func (o *Orb) Render(ts, minFrameMs float64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.disposed || (o.drawn && ts-o.lastFrame < minFrameMs) {
		return false
	}
	o.lastFrame, o.drawn = ts, true

	o.viz.Tick(ts)
	o.indicator.Tick(ts)

	o.vizSurface.Clear(color.Transparent)
	o.viz.Draw(o.vizSurface)
	o.indSurface.Clear(color.Transparent)
	o.indicator.Draw(o.indSurface)

	o.view.Present(o.vizSurface.Snapshot())
	o.badge.Present(o.indSurface.Snapshot())
	return true
}

// CanvasObject returns the orb with the indicator in its top-right corner.
func (o *Orb) CanvasObject() fyneapp.CanvasObject {
	corner := container.NewBorder(container.NewHBox(layout.NewSpacer(), o.badge), nil, nil, nil)
	return container.NewStack(o.view, corner)
}

// Dispose stops rendering and releases the visualizer.
func (o *Orb) Dispose() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return
	}
	o.disposed = true
	o.viz.Dispose()
}
