// Package mock provides a scripted implementation of the VoiceSession interface.
// It drives the visualizers without a real voice-call backend.
package mock

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// StepKind selects what a script step publishes.
type StepKind int

// Script step kinds.
const (
	StepSpeechStart StepKind = iota
	StepSpeechEnd
	StepUserStart
	StepUserEnd
	StepVolume
	StepFail
)

// Step is one scripted event, published Delay after the previous step.
type Step struct {
	Delay  time.Duration
	Kind   StepKind
	Volume float64 // StepVolume only
}

// Session replays a script of voice events on the bus.
//
// Thread-safety: This implementation is thread-safe.
type Session struct {
	logger *slog.Logger
	bus    ports.EventBus
	script []Step
	loop   bool
	title  string

	mu      sync.Mutex
	running bool
	ended   bool
	stop    chan struct{}
	wg      sync.WaitGroup

	failStart bool
}

// NewSession creates a session replaying script. With loop set the script
// restarts after its last step until Close.
func NewSession(bus ports.EventBus, script []Step, loop bool) *Session {
	return &Session{
		logger: logger.Nop(),
		bus:    bus,
		script: append([]Step(nil), script...),
		loop:   loop,
		title:  "scripted session",
	}
}

// SetLogger sets the logger for this session.
// This should be called after construction before starting the session.
func (s *Session) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger != nil {
		s.logger = logger
	}
}

// SetFailStart configures the session to fail Start (for testing).
func (s *Session) SetFailStart(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStart = fail
}

// Start publishes VoiceCallStartedEvent and begins replaying the script.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.failStart {
		s.mu.Unlock()
		return domain.NewSourceError("start", "", "mock start failed", nil)
	}
	if s.running {
		s.mu.Unlock()
		return domain.ErrAlreadyStarted
	}
	s.running = true
	s.ended = false
	s.stop = make(chan struct{})
	stop := s.stop
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("mock voice session started", slog.Int("steps", len(s.script)), slog.Bool("loop", s.loop))
	s.bus.Publish(domain.NewVoiceCallStartedEvent(s.title))

	go func() {
		defer s.wg.Done()
		s.run(ctx, stop)
		s.end()
	}()
	return nil
}

func (s *Session) run(ctx context.Context, stop <-chan struct{}) {
	if len(s.script) == 0 {
		return
	}
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		for _, step := range s.script {
			timer.Reset(step.Delay)
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if !s.publish(step) {
				return
			}
		}
		if !s.loop {
			return
		}
	}
}

// publish emits step and reports whether the script continues.
func (s *Session) publish(step Step) bool {
	switch step.Kind {
	case StepSpeechStart:
		s.bus.Publish(domain.NewVoiceSpeechStartedEvent())
	case StepSpeechEnd:
		s.bus.Publish(domain.NewVoiceSpeechEndedEvent())
	case StepUserStart:
		s.bus.Publish(domain.NewVoiceUserSpeechEvent(true))
	case StepUserEnd:
		s.bus.Publish(domain.NewVoiceUserSpeechEvent(false))
	case StepVolume:
		s.bus.Publish(domain.NewVoiceVolumeEvent(math.Max(0, math.Min(1, step.Volume))))
	case StepFail:
		err := domain.NewSourceError("stream", "", "scripted failure", nil)
		s.logger.Warn("mock voice session failed", slog.Any("error", err))
		s.bus.Publish(domain.NewVoiceErrorEvent(err))
		return false
	}
	return true
}

// end publishes VoiceCallEndedEvent once per started call.
func (s *Session) end() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.mu.Unlock()

	s.bus.Publish(domain.NewVoiceCallEndedEvent())
	s.logger.Info("mock voice session ended")
}

// Close stops the script and waits for the replay goroutine to exit.
func (s *Session) Close() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Running returns true between Start and Close.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// DefaultScript is a short conversation: the assistant talks, then the user
// answers. Volumes follow a speech-like envelope sampled every 50 ms.
func DefaultScript() []Step {
	const sample = 50 * time.Millisecond

	var steps []Step
	talk := func(start, end StepKind, d time.Duration, rate float64) {
		steps = append(steps, Step{Delay: 600 * time.Millisecond, Kind: start})
		n := int(d / sample)
		for i := 0; i < n; i++ {
			ph := float64(i) * sample.Seconds()
			v := 0.45 + 0.3*math.Sin(ph*rate)*math.Sin(ph*rate*0.37+1) + 0.15*math.Sin(ph*rate*2.3)
			steps = append(steps, Step{Delay: sample, Kind: StepVolume, Volume: v})
		}
		steps = append(steps, Step{Delay: sample, Kind: end})
	}
	talk(StepSpeechStart, StepSpeechEnd, 3*time.Second, 9)
	talk(StepUserStart, StepUserEnd, 2*time.Second, 7)
	return steps
}
