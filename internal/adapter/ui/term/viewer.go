// Package term presents the black hole in a terminal. Each character cell
// shows two vertically stacked pixels with the upper half block glyph.
package term

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/tejashwikalptaru/singularity/internal/adapter/surface/raster"
	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	halfBlock = '▀'

	// DefaultPixelScale maps one terminal pixel to two logical units.
	DefaultPixelScale = 0.5
)

// Viewer owns the terminal screen and the surface the engine draws into.
//
// Thread-safety: Present may be called from the render goroutine while Run
// is active; everything else belongs to the Run goroutine.
type Viewer struct {
	logger *slog.Logger
	screen tcell.Screen
	bus    ports.EventBus
	scale  float64

	surface *raster.Surface

	mu     sync.Mutex
	frame  *image.RGBA
	redraw chan struct{}
}

// NewViewer wraps an initialised screen. scale is the device pixel ratio
// handed to the engine; non-positive values use DefaultPixelScale.
func NewViewer(log *slog.Logger, screen tcell.Screen, bus ports.EventBus, scale float64) *Viewer {
	if log == nil {
		log = logger.Nop()
	}
	if !(scale > 0) {
		scale = DefaultPixelScale
	}
	v := &Viewer{
		logger: log,
		screen: screen,
		bus:    bus,
		scale:  scale,
		redraw: make(chan struct{}, 1),
	}
	vp := v.Viewport()
	v.surface = raster.NewSurface(vp.Width, vp.Height, vp.DevicePixelRatio)
	return v
}

// Surface is the engine's drawing target. The engine resizes it.
func (v *Viewer) Surface() *raster.Surface {
	return v.surface
}

// Viewport is the screen size in pixels: one column wide, two per row.
func (v *Viewer) Viewport() domain.Viewport {
	cols, rows := v.screen.Size()
	return domain.Viewport{
		Width:            max(cols, 1),
		Height:           max(rows*2, 1),
		DevicePixelRatio: v.scale,
	}
}

// Present copies the surface for the next redraw. It is meant to run as the
// engine's AfterFrame hook.
func (v *Viewer) Present() {
	frame := v.surface.Snapshot()

	v.mu.Lock()
	v.frame = frame
	v.mu.Unlock()

	select {
	case v.redraw <- struct{}{}:
	default:
	}
}

// Run shows frames until ctx ends or the user quits with q, Esc or Ctrl+C.
// Terminal resizes are published as ViewportResizedEvent.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer func() {
		close(quit)
		// unblocks PollEvent
		v.screen.PostEvent(tcell.NewEventInterrupt(nil))
		wg.Wait()
	}()

	v.logger.Info("terminal viewer started", slog.Any("viewport", v.Viewport()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.handleEvent(ev) {
				v.logger.Info("terminal viewer closed by user")
				return nil
			}
		case <-v.redraw:
			v.draw()
		}
	}
}

// handleEvent reports false when the viewer should exit.
func (v *Viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return false
		}
	case *tcell.EventResize:
		v.screen.Sync()
		vp := v.Viewport()
		v.logger.Debug("terminal resized", slog.Int("width", vp.Width), slog.Int("height", vp.Height))
		if v.bus != nil {
			v.bus.Publish(domain.NewViewportResizedEvent(vp.Width, vp.Height, vp.DevicePixelRatio))
		}
	}
	return true
}

func (v *Viewer) draw() {
	v.mu.Lock()
	frame := v.frame
	v.mu.Unlock()
	if frame == nil {
		return
	}
	Blit(v.screen, frame)
	v.screen.Show()
}

// Blit writes img into screen, two pixel rows per cell row. Cells outside
// the image are left untouched.
func Blit(screen tcell.Screen, img *image.RGBA) {
	cols, rows := screen.Size()
	b := img.Bounds()
	for y := 0; y < rows; y++ {
		top := b.Min.Y + 2*y
		if top >= b.Max.Y {
			break
		}
		for x := 0; x < cols && b.Min.X+x < b.Max.X; x++ {
			upper := rgb(img, b.Min.X+x, top)
			lower := tcell.ColorBlack
			if top+1 < b.Max.Y {
				lower = rgb(img, b.Min.X+x, top+1)
			}
			style := tcell.StyleDefault.Foreground(upper).Background(lower)
			screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
}

// rgb flattens a premultiplied pixel onto black.
func rgb(img *image.RGBA, x, y int) tcell.Color {
	c := img.RGBAAt(x, y)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
