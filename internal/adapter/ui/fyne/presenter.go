// Package fyne provides Fyne UI adapter implementations.
// This package implements the Singularity window using the Fyne toolkit.
package fyne

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
	"github.com/tejashwikalptaru/singularity/internal/service"
)

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
// Methods may be called from any goroutine.
type UIView interface {
	// Call state updates
	SetStatus(status domain.VoiceStatus)
	SetCallTitle(title string)

	// Quality updates. override is nil when the tier is derived from the device.
	SetQuality(override *domain.QualityTier, active domain.QualityTier)

	// Notifications
	ShowNotification(title, message string)
	ShowError(err error)
}

// QualityController is the part of the black-hole engine the presenter drives.
type QualityController interface {
	SetTier(tier *domain.QualityTier)
	Profile() domain.PerformanceProfile
}

// SessionFactory builds a voice session for an audio file.
type SessionFactory func(path string) ports.VoiceSession

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to UI updates
// - Translate UI commands to service method calls
//
// Thread-safety: All operations are thread-safe via sync.RWMutex.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	sessionService    *service.SessionService
	preferenceService *service.PreferenceService
	quality           QualityController
	newFileSession    SessionFactory

	eventBus ports.EventBus
	view     UIView

	// Presentation state
	title string
	subs  []domain.SubscriptionID

	ctx    context.Context
	cancel context.CancelFunc

	// Concurrency control
	mu           sync.RWMutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter. The saved quality override is applied
// to the engine before the first frame.
func NewPresenter(
	log *slog.Logger,
	sessionService *service.SessionService,
	preferenceService *service.PreferenceService,
	quality QualityController,
	eventBus ports.EventBus,
	view UIView,
) *Presenter {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:            log,
		sessionService:    sessionService,
		preferenceService: preferenceService,
		quality:           quality,
		eventBus:          eventBus,
		view:              view,
		ctx:               ctx,
		cancel:            cancel,
	}

	p.subscribeToEvents()
	p.syncInitialState()

	return p
}

// SetFileSessionFactory enables opening voice files from the UI.
func (p *Presenter) SetFileSessionFactory(factory SessionFactory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.newFileSession = factory
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := []struct {
		eventType domain.EventType
		handler   domain.EventHandler
	}{
		// Call events
		{domain.EventVoiceCallStarted, p.onCallStarted},
		{domain.EventVoiceCallEnded, p.onCallEnded},
		{domain.EventVoiceSpeechStarted, p.onStatusEvent},
		{domain.EventVoiceSpeechEnded, p.onStatusEvent},
		{domain.EventVoiceUserSpeech, p.onStatusEvent},
		{domain.EventVoiceError, p.onVoiceError},

		// Engine events
		{domain.EventPerformanceDegraded, p.onPerformanceDegraded},
	}

	for _, s := range subscriptions {
		p.subs = append(p.subs, p.eventBus.Subscribe(s.eventType, s.handler))
	}
}

// syncInitialState synchronizes the UI and the engine with the saved preferences.
func (p *Presenter) syncInitialState() {
	override := p.preferenceService.QualityOverride()
	if override != nil && p.quality != nil {
		p.quality.SetTier(override)
	}
	p.refreshQuality()

	p.view.SetStatus(p.sessionService.State().Status)
	p.view.SetCallTitle("")
}

func (p *Presenter) refreshQuality() {
	active := domain.TierDesktop
	if p.quality != nil {
		active = p.quality.Profile().Tier
	}
	p.view.SetQuality(p.preferenceService.QualityOverride(), active)
}

// Event handlers

func (p *Presenter) onCallStarted(event domain.Event) {
	e, ok := event.(domain.VoiceCallStartedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.title = e.Title
	p.mu.Unlock()

	p.view.SetCallTitle(e.Title)
	p.view.SetStatus(p.sessionService.State().Status)
}

func (p *Presenter) onCallEnded(domain.Event) {
	p.mu.Lock()
	p.title = ""
	p.mu.Unlock()

	p.view.SetCallTitle("")
	p.view.SetStatus(p.sessionService.State().Status)
}

func (p *Presenter) onStatusEvent(domain.Event) {
	p.view.SetStatus(p.sessionService.State().Status)
}

func (p *Presenter) onVoiceError(event domain.Event) {
	e, ok := event.(domain.VoiceErrorEvent)
	if !ok {
		return
	}
	p.view.SetStatus(p.sessionService.State().Status)
	p.view.ShowError(e.Error)
}

func (p *Presenter) onPerformanceDegraded(event domain.Event) {
	e, ok := event.(domain.PerformanceDegradedEvent)
	if !ok {
		return
	}
	p.logger.Info("quality reduced",
		slog.String("tier", e.Tier.String()),
		slog.Float64("fps", e.FPS))
	p.refreshQuality()
	p.view.ShowNotification("Quality reduced", fmt.Sprintf("Running at %.0f fps, switched to %s quality", e.FPS, e.Tier))
}

// Command handlers (called from the UI)

// OnCallToggled starts a call when idle and hangs up otherwise.
func (p *Presenter) OnCallToggled() error {
	if p.sessionService.State().Status == domain.VoiceIdle {
		if err := p.sessionService.Connect(p.ctx); err != nil {
			p.logger.Warn("failed to start call", slog.Any("error", err))
			return err
		}
		return nil
	}
	return p.sessionService.Hangup()
}

// OnQualitySelected saves and applies a quality override. nil selects the
// device-derived tier.
func (p *Presenter) OnQualitySelected(tier *domain.QualityTier) error {
	if err := p.preferenceService.SetQualityOverride(tier); err != nil {
		p.logger.Warn("failed to save quality override", slog.Any("error", err))
		return err
	}
	if p.quality != nil {
		p.quality.SetTier(tier)
	}
	p.refreshQuality()
	return nil
}

// OnVoiceFileOpened replaces the voice session with one streaming path.
// It fails while a call is in progress.
func (p *Presenter) OnVoiceFileOpened(path string) error {
	p.mu.RLock()
	factory := p.newFileSession
	p.mu.RUnlock()

	if factory == nil {
		return domain.NewValidationError("voice_file", path, "voice files are not supported by this session")
	}
	if err := p.sessionService.SetSession(factory(path)); err != nil {
		return fmt.Errorf("open voice file: %w", err)
	}
	p.logger.Info("voice file selected", slog.String("path", path))
	p.view.ShowNotification("Voice file", "Start a call to play "+path)
	return nil
}

// Title returns the title of the current call, or "".
func (p *Presenter) Title() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.title
}

// Shutdown detaches from the bus and cancels a pending connect.
// Safe to call multiple times.
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.cancel()
		for _, id := range p.subs {
			p.eventBus.Unsubscribe(id)
		}
		p.subs = nil
		p.logger.Debug("presenter shut down")
	})
}
