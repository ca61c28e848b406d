package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
	"github.com/tejashwikalptaru/singularity/internal/voiceviz"
)

const (
	// levelDecay is applied to the levels each step while nobody speaks.
	levelDecay = 0.95

	// analyserScale is applied to analyser band energies before they are drawn.
	analyserScale = 0.8

	defaultUpdateInterval = 16 * time.Millisecond
)

// LevelSink is one side of the call as drawn on screen.
// *voiceviz.Visualizer satisfies it.
type LevelSink interface {
	SetLevels(levels []float64)
	SetActive(active bool)
	SetStatus(status domain.VoiceStatus)
}

// SessionState is a snapshot of the call.
type SessionState struct {
	Status  domain.VoiceStatus
	Speaker domain.Speaker
	Volume  float64
}

// SessionService tracks the voice call state from bus events and feeds
// per-step levels to the assistant and user visualizers.
// All operations are thread-safe via sync.RWMutex.
type SessionService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	bus       ports.EventBus
	session   ports.VoiceSession
	assistant LevelSink
	user      LevelSink

	// State
	status      domain.VoiceStatus
	speaker     domain.Speaker
	lastSpeaker domain.Speaker
	volume      float64
	bands       []float64
	levels      [voiceviz.NumBands]float64

	subs           []domain.SubscriptionID
	updateInterval time.Duration

	// Concurrency control
	mu            sync.RWMutex
	stopUpdate    chan struct{}
	updateRunning bool
	updateWg      sync.WaitGroup
	started       bool
	shutdown      bool
}

// NewSessionService creates a session service and subscribes it to the voice events.
// session may be nil when events are published on the bus by other means.
func NewSessionService(
	log *slog.Logger,
	bus ports.EventBus,
	session ports.VoiceSession,
	assistant LevelSink,
	user LevelSink,
) *SessionService {
	if log == nil {
		log = logger.Nop()
	}
	s := &SessionService{
		logger:         log,
		bus:            bus,
		session:        session,
		assistant:      assistant,
		user:           user,
		status:         domain.VoiceIdle,
		updateInterval: defaultUpdateInterval,
	}

	s.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventVoiceCallStarted, s.onCallStarted),
		bus.Subscribe(domain.EventVoiceCallEnded, s.onCallEnded),
		bus.Subscribe(domain.EventVoiceSpeechStarted, s.onSpeechStarted),
		bus.Subscribe(domain.EventVoiceSpeechEnded, s.onSpeechEnded),
		bus.Subscribe(domain.EventVoiceUserSpeech, s.onUserSpeech),
		bus.Subscribe(domain.EventVoiceVolume, s.onVolume),
		bus.Subscribe(domain.EventVoiceBands, s.onBands),
		bus.Subscribe(domain.EventVoiceError, s.onError),
	}
	s.applyStatus()

	log.Debug("session service initialized")
	return s
}

// SetUpdateInterval changes the level update period used by the next Connect.
func (s *SessionService) SetUpdateInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.updateInterval = d
	}
}

// Connect moves to connecting, starts the voice session and the level
// update routine. The status becomes connected once the session reports
// the call started.
func (s *SessionService) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return domain.ErrDisposed
	}
	if s.session == nil {
		s.mu.Unlock()
		return domain.NewValidationError("session", nil, "no voice session configured")
	}
	if s.status != domain.VoiceIdle {
		s.mu.Unlock()
		return domain.ErrAlreadyStarted
	}
	s.status = domain.VoiceConnecting
	s.applyStatusLocked()
	session := s.session
	restart := s.started
	s.started = true
	s.mu.Unlock()

	// a call that ended on its own still owns a finished session
	if restart {
		if err := session.Close(); err != nil {
			s.logger.Warn("failed to close previous voice session", slog.Any("error", err))
		}
	}

	s.logger.Info("connecting voice session")
	if err := session.Start(ctx); err != nil {
		s.mu.Lock()
		s.status = domain.VoiceIdle
		s.applyStatusLocked()
		s.mu.Unlock()
		s.logger.Warn("voice session failed to start", slog.Any("error", err))
		return fmt.Errorf("connect: %w", err)
	}

	s.startUpdateRoutine()
	return nil
}

// SetSession replaces the voice session used by the next Connect.
// It fails while a call is in progress.
func (s *SessionService) SetSession(session ports.VoiceSession) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return domain.ErrDisposed
	}
	if s.status != domain.VoiceIdle {
		s.mu.Unlock()
		return domain.ErrAlreadyStarted
	}
	prev, started := s.session, s.started
	s.session = session
	s.started = false
	s.mu.Unlock()

	if started && prev != nil {
		return prev.Close()
	}
	return nil
}

// Hangup closes the voice session and stops the update routine.
func (s *SessionService) Hangup() error {
	s.stopUpdateRoutine()

	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()

	var err error
	if session != nil {
		err = session.Close()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	s.resetLocked()
	s.levels = [voiceviz.NumBands]float64{}
	s.lastSpeaker = domain.SpeakerNone
	s.applyLevelsLocked()
	return err
}

// Shutdown hangs up and detaches from the bus. Safe to call repeatedly.
func (s *SessionService) Shutdown() error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.shutdown = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	err := s.Hangup()
	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}
	return err
}

// State returns the current call state.
func (s *SessionService) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionState{Status: s.status, Speaker: s.speaker, Volume: s.volume}
}

// Levels returns the levels computed by the last Step.
func (s *SessionService) Levels() [voiceviz.NumBands]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels
}

// Step recomputes the levels and pushes them to the visualizers. The
// speaking side receives the levels, the other side zeros. While nobody
// speaks the last levels decay on the side that spoke last.
func (s *SessionService) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.speaker == domain.SpeakerNone:
		for i := range s.levels {
			s.levels[i] *= levelDecay
		}
	case len(s.bands) > 0:
		s.levels = [voiceviz.NumBands]float64{}
		for i := 0; i < len(s.levels) && i < len(s.bands); i++ {
			s.levels[i] = s.bands[i] * analyserScale
		}
	default:
		s.levels = VolumeToLevels(s.volume)
	}
	s.applyLevelsLocked()
	s.applyActiveLocked()
}

// VolumeToLevels spreads an overall volume in [0, 1] over the bands with a
// gentle sinusoidal profile on the 0-255 analyser scale.
func VolumeToLevels(volume float64) [voiceviz.NumBands]float64 {
	var out [voiceviz.NumBands]float64
	if !(volume > 0) {
		return out
	}
	volume = math.Min(volume, 1)
	for i := range out {
		out[i] = 255 * volume * (0.5 + 0.5*math.Sin(float64(i)*0.2))
	}
	return out
}

func (s *SessionService) applyLevelsLocked() {
	var zero [voiceviz.NumBands]float64
	target := s.speaker
	if target == domain.SpeakerNone {
		target = s.lastSpeaker
	}
	aiLevels, userLevels := zero, zero
	switch target {
	case domain.SpeakerAssistant:
		aiLevels = s.levels
	case domain.SpeakerUser:
		userLevels = s.levels
	}
	if s.assistant != nil {
		s.assistant.SetLevels(aiLevels[:])
	}
	if s.user != nil {
		s.user.SetLevels(userLevels[:])
	}
}

func (s *SessionService) applyActiveLocked() {
	if s.assistant != nil {
		s.assistant.SetActive(s.speaker == domain.SpeakerAssistant)
	}
	if s.user != nil {
		s.user.SetActive(s.speaker == domain.SpeakerUser)
	}
}

func (s *SessionService) applyStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyStatusLocked()
}

func (s *SessionService) applyStatusLocked() {
	if s.assistant != nil {
		s.assistant.SetStatus(s.status)
	}
	if s.user != nil {
		s.user.SetStatus(s.status)
	}
	s.applyActiveLocked()
}

func (s *SessionService) resetLocked() {
	s.status = domain.VoiceIdle
	s.speaker = domain.SpeakerNone
	s.volume = 0
	s.bands = nil
	s.applyStatusLocked()
}

// setSpeaker switches the talking side. A new speaker starts from its own
// volume and spectrum.
func (s *SessionService) setSpeaker(speaker domain.Speaker, status domain.VoiceStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.VoiceIdle {
		s.logger.Debug("ignoring speech event outside a call", slog.String("speaker", speaker.String()))
		return
	}
	if speaker != s.speaker {
		s.volume = 0
		s.bands = nil
	}
	if speaker != domain.SpeakerNone {
		s.lastSpeaker = speaker
	}
	s.speaker = speaker
	s.status = status
	s.applyStatusLocked()
}

// Event handlers

func (s *SessionService) onCallStarted(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := e.(domain.VoiceCallStartedEvent); ok {
		s.logger.Info("voice call started", slog.String("title", ev.Title))
	}
	s.status = domain.VoiceConnected
	s.speaker = domain.SpeakerNone
	s.applyStatusLocked()
}

func (s *SessionService) onCallEnded(domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("voice call ended")
	s.resetLocked()
}

func (s *SessionService) onSpeechStarted(domain.Event) {
	s.setSpeaker(domain.SpeakerAssistant, domain.VoiceSpeaking)
}

func (s *SessionService) onSpeechEnded(domain.Event) {
	s.mu.RLock()
	current := s.speaker
	s.mu.RUnlock()
	if current == domain.SpeakerAssistant {
		s.setSpeaker(domain.SpeakerNone, domain.VoiceConnected)
	}
}

func (s *SessionService) onUserSpeech(e domain.Event) {
	ev, ok := e.(domain.VoiceUserSpeechEvent)
	if !ok {
		return
	}
	if ev.Speaking {
		s.setSpeaker(domain.SpeakerUser, domain.VoiceListening)
		return
	}
	s.mu.RLock()
	current := s.speaker
	s.mu.RUnlock()
	if current == domain.SpeakerUser {
		s.setSpeaker(domain.SpeakerNone, domain.VoiceConnected)
	}
}

func (s *SessionService) onVolume(e domain.Event) {
	ev, ok := e.(domain.VoiceVolumeEvent)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := ev.Volume
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	s.volume = math.Min(v, 1)
}

func (s *SessionService) onBands(e domain.Event) {
	ev, ok := e.(domain.VoiceBandsEvent)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bands = append(s.bands[:0], ev.Bands...)
}

func (s *SessionService) onError(e domain.Event) {
	ev, ok := e.(domain.VoiceErrorEvent)
	if !ok {
		return
	}
	s.logger.Error("voice session error", slog.Any("error", ev.Error))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// startUpdateRoutine starts a goroutine that steps the levels periodically.
func (s *SessionService) startUpdateRoutine() {
	s.mu.Lock()
	if s.updateRunning {
		s.mu.Unlock()
		return
	}
	s.updateRunning = true
	s.stopUpdate = make(chan struct{})
	stop := s.stopUpdate
	interval := s.updateInterval
	s.updateWg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.updateWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.Step()
			}
		}
	}()
}

func (s *SessionService) stopUpdateRoutine() {
	s.mu.Lock()
	if s.updateRunning {
		close(s.stopUpdate)
		s.updateRunning = false
	}
	// Release lock before waiting for goroutine to exit (to avoid deadlock)
	s.mu.Unlock()

	s.updateWg.Wait()
}
