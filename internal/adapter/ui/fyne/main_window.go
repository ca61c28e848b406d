package fyne

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/singularity/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
	"github.com/tejashwikalptaru/singularity/internal/voiceviz"
)

const (
	titleWidth      = 36
	marqueeInterval = 250 * time.Millisecond
	orbFrameMs      = 1000.0 / 60
)

// WindowConfig holds the main window settings.
type WindowConfig struct {
	Title  string
	Width  float32
	Height float32
}

type qualityItem struct {
	tier *domain.QualityTier
	item *fyneapp.MenuItem
}

// MainWindow is the main UI window implementing the UIView interface.
// The black hole fills the window; the two voice orbs sit above it.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger
	bus    ports.EventBus

	// UI components
	background   *widgets.SurfaceView
	assistant    *Orb
	user         *Orb
	callButton   *widget.Button
	statusLabel  *widget.Label
	titleLabel   *widget.Label
	callItem     *fyneapp.MenuItem
	callMenu     *fyneapp.Menu
	qualityMenu  *fyneapp.Menu
	qualityItems []qualityItem

	// Orb render loop
	frameMu   sync.Mutex
	scheduler ports.FrameScheduler
	frameID   ports.FrameID
	looping   bool

	// Title scrolling
	mu          sync.Mutex
	marquee     *widgets.Marquee
	orbSize     float64
	stopMarquee chan struct{}
	marqueeWg   sync.WaitGroup

	// Lifecycle management
	closeOnce     sync.Once
	onBeforeClose func()

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window around the two orbs.
func NewMainWindow(app fyneapp.App, cfg WindowConfig, log *slog.Logger, bus ports.EventBus, assistant, user *Orb) *MainWindow {
	if log == nil {
		log = logger.Nop()
	}
	w := &MainWindow{
		app:         app,
		logger:      log,
		bus:         bus,
		assistant:   assistant,
		user:        user,
		marquee:     widgets.NewMarquee("", titleWidth),
		orbSize:     assistant.Visualizer().Size(),
		stopMarquee: make(chan struct{}),
	}

	w.window = app.NewWindow(cfg.Title)
	w.buildUI()

	w.window.Resize(fyneapp.NewSize(cfg.Width, cfg.Height))
	w.window.SetCloseIntercept(w.Close)

	if fyneapp.CurrentDevice().IsMobile() {
		app.Lifecycle().SetOnEnteredForeground(func() {
			w.bus.Publish(domain.NewVisibilityChangedEvent(true))
		})
		app.Lifecycle().SetOnExitedForeground(func() {
			w.bus.Publish(domain.NewVisibilityChangedEvent(false))
		})
	}

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.addShortcuts()
}

// SetOnBeforeClose registers a callback run once before the window closes.
func (w *MainWindow) SetOnBeforeClose(fn func()) {
	w.onBeforeClose = fn
}

// Background returns the view the black-hole frames are presented on.
func (w *MainWindow) Background() *widgets.SurfaceView {
	return w.background
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	w.background = widgets.NewSurfaceView(w.onBackgroundResized)
	backdrop := widgets.NewTappableStack(w.background, nil, w.showQualityPopup)

	w.callButton = widget.NewButtonWithIcon("Start call", theme.MediaPlayIcon(), w.toggleCall)
	w.callButton.Importance = widget.HighImportance

	w.statusLabel = widget.NewLabel(statusText(domain.VoiceIdle))
	w.statusLabel.Alignment = fyneapp.TextAlignCenter
	w.titleLabel = widget.NewLabel("")
	w.titleLabel.Alignment = fyneapp.TextAlignCenter
	w.titleLabel.Truncation = fyneapp.TextTruncateClip
	w.titleLabel.TextStyle = fyneapp.TextStyle{Italic: true}

	userOrb := widgets.NewTappableStack(w.user.CanvasObject(), w.toggleCall, w.showQualityPopup)
	orbs := container.NewHBox(layout.NewSpacer(), w.assistant.CanvasObject(), userOrb, layout.NewSpacer())
	controls := container.NewVBox(
		container.NewCenter(w.callButton),
		w.statusLabel,
		w.titleLabel,
	)
	overlay := container.NewBorder(nil, container.NewPadded(controls), nil, nil, container.NewCenter(orbs))

	w.window.SetContent(container.NewStack(backdrop, overlay))
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	separator := fyneapp.NewMenuItemSeparator()

	w.callItem = fyneapp.NewMenuItem("Start Call", w.toggleCall)
	openFile := fyneapp.NewMenuItem("Open Voice File...", w.handleOpenVoiceFile)
	exitMenu := fyneapp.NewMenuItem("Exit", w.Close)
	w.callMenu = fyneapp.NewMenu("Call", w.callItem, openFile, separator, exitMenu)

	w.qualityItems = nil
	auto := fyneapp.NewMenuItem("Auto", nil)
	w.qualityItems = append(w.qualityItems, qualityItem{tier: nil, item: auto})
	for _, tier := range []domain.QualityTier{domain.TierDesktop, domain.TierMobile, domain.TierLow} {
		w.qualityItems = append(w.qualityItems, qualityItem{tier: &tier, item: fyneapp.NewMenuItem(qualityName(tier), nil)})
	}

	items := make([]*fyneapp.MenuItem, 0, len(w.qualityItems))
	for _, qi := range w.qualityItems {
		tier := qi.tier
		qi.item.Action = func() {
			w.selectQuality(tier)
		}
		items = append(items, qi.item)
	}
	auto.Checked = true
	w.qualityMenu = fyneapp.NewMenu("Quality", items...)

	return []*fyneapp.Menu{w.callMenu, w.qualityMenu}
}

func qualityName(tier domain.QualityTier) string {
	switch tier {
	case domain.TierDesktop:
		return "High"
	case domain.TierMobile:
		return "Medium"
	case domain.TierLow:
		return "Low"
	default:
		return tier.String()
	}
}

// statusText is the status line for a call status.
func statusText(status domain.VoiceStatus) string {
	switch status {
	case domain.VoiceConnecting:
		return "Connecting..."
	case domain.VoiceConnected:
		return "Connected"
	case domain.VoiceSpeaking:
		return "Assistant is speaking"
	case domain.VoiceListening:
		return "Listening"
	default:
		return "Tap your orb to start a call"
	}
}

func (w *MainWindow) toggleCall() {
	if w.presenter == nil {
		return
	}
	// Connect runs the session start outside the UI goroutine
	go func() {
		if err := w.presenter.OnCallToggled(); err != nil {
			w.ShowError(err)
		}
	}()
}

func (w *MainWindow) selectQuality(tier *domain.QualityTier) {
	if w.presenter == nil {
		return
	}
	if err := w.presenter.OnQualitySelected(tier); err != nil {
		w.ShowError(err)
	}
}

func (w *MainWindow) showQualityPopup(pe *fyneapp.PointEvent) {
	widget.ShowPopUpMenuAtPosition(w.qualityMenu, w.window.Canvas(), pe.AbsolutePosition)
}

// handleOpenVoiceFile handles the "Open Voice File" menu action.
func (w *MainWindow) handleOpenVoiceFile() {
	if w.presenter == nil {
		return
	}

	d := NewVoiceFileDialog(w.window, func(filePath string) {
		if err := w.presenter.OnVoiceFileOpened(filePath); err != nil {
			w.ShowError(fmt.Errorf("failed to open voice file: %w", err))
		}
	}, w.logger)
	d.Show()
}

// onBackgroundResized publishes the background size in device pixels.
func (w *MainWindow) onBackgroundResized(size fyneapp.Size) {
	scale := w.window.Canvas().Scale()
	if scale <= 0 {
		scale = 1
	}
	width := int(size.Width*scale + 0.5)
	height := int(size.Height*scale + 0.5)
	if width < 1 || height < 1 {
		return
	}
	w.bus.Publish(domain.NewViewportResizedEvent(width, height, float64(scale)))

	orbSize := voiceviz.ResponsiveSize(float64(size.Width))
	w.mu.Lock()
	changed := orbSize != w.orbSize
	w.orbSize = orbSize
	w.mu.Unlock()
	if changed {
		for _, o := range []*Orb{w.assistant, w.user} {
			if err := o.SetSize(orbSize); err != nil {
				w.logger.Warn("failed to resize orb", slog.Any("error", err))
			}
		}
	}
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyReturn,
		Modifier: fyneapp.KeyModifierShortcutDefault,
	}, func(fyneapp.Shortcut) {
		w.toggleCall()
	})
}

// StartRendering drives the orbs from scheduler until the window closes.
func (w *MainWindow) StartRendering(scheduler ports.FrameScheduler) {
	w.frameMu.Lock()
	defer w.frameMu.Unlock()
	if w.looping {
		return
	}
	w.scheduler = scheduler
	w.looping = true
	w.frameID = scheduler.RequestFrame(w.renderOrbs)
}

func (w *MainWindow) renderOrbs(ts float64) {
	w.assistant.Render(ts, orbFrameMs)
	w.user.Render(ts, orbFrameMs)

	w.frameMu.Lock()
	defer w.frameMu.Unlock()
	if w.looping {
		w.frameID = w.scheduler.RequestFrame(w.renderOrbs)
	}
}

func (w *MainWindow) stopRendering() {
	w.frameMu.Lock()
	defer w.frameMu.Unlock()
	if !w.looping {
		return
	}
	w.looping = false
	w.scheduler.CancelFrame(w.frameID)
}

// startMarqueeRoutine scrolls call titles that do not fit the status line.
func (w *MainWindow) startMarqueeRoutine() {
	w.marqueeWg.Add(1)
	go func() {
		defer w.marqueeWg.Done()
		ticker := time.NewTicker(marqueeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stopMarquee:
				return
			case <-ticker.C:
				w.mu.Lock()
				scrolls := w.marquee.Scrolls()
				text := w.marquee.Rotate()
				w.mu.Unlock()
				if scrolls {
					fyneapp.Do(func() {
						w.titleLabel.SetText(text)
					})
				}
			}
		}
	}()
}

// ShowAndRun shows the window and runs the application.
// This also starts the title scrolling.
func (w *MainWindow) ShowAndRun() {
	w.startMarqueeRoutine()
	w.window.ShowAndRun()
}

// Close closes the window and stops the orb and title animations.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		if w.onBeforeClose != nil {
			w.onBeforeClose()
		}
		w.stopRendering()
		close(w.stopMarquee)
		w.marqueeWg.Wait()
		w.bus.Publish(domain.NewVisibilityChangedEvent(false))
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// Size returns the current content size in logical units.
func (w *MainWindow) Size() fyneapp.Size {
	return w.window.Canvas().Size()
}

// UIView interface implementation

// SetStatus updates the status line and the call controls.
func (w *MainWindow) SetStatus(status domain.VoiceStatus) {
	fyneapp.Do(func() {
		w.statusLabel.SetText(statusText(status))
		if status == domain.VoiceIdle {
			w.callButton.SetText("Start call")
			w.callButton.SetIcon(theme.MediaPlayIcon())
			w.callItem.Label = "Start Call"
		} else {
			w.callButton.SetText("Hang up")
			w.callButton.SetIcon(theme.MediaStopIcon())
			w.callItem.Label = "Hang Up"
		}
		w.callMenu.Refresh()
	})
}

// SetCallTitle updates the scrolling call title.
func (w *MainWindow) SetCallTitle(title string) {
	w.mu.Lock()
	w.marquee = widgets.NewMarquee(title, titleWidth)
	text := w.marquee.Text()
	w.mu.Unlock()

	fyneapp.Do(func() {
		w.titleLabel.SetText(text)
	})
}

// SetQuality checks the menu entry of the override and shows the active tier.
func (w *MainWindow) SetQuality(override *domain.QualityTier, active domain.QualityTier) {
	fyneapp.Do(func() {
		for _, qi := range w.qualityItems {
			switch {
			case qi.tier == nil:
				qi.item.Checked = override == nil
				qi.item.Label = "Auto (" + qualityName(active) + ")"
			default:
				qi.item.Checked = override != nil && *override == *qi.tier
			}
		}
		w.qualityMenu.Refresh()
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// ShowError shows err in a dialog over the window.
func (w *MainWindow) ShowError(err error) {
	if err == nil {
		return
	}
	w.logger.Warn("showing error", slog.Any("error", err))
	fyneapp.Do(func() {
		dialog.ShowError(err, w.window)
	})
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
