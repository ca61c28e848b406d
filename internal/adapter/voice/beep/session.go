// Package beep provides a file-backed VoiceSession using the gopxl/beep decoders.
// The decoded audio plays the assistant's side of a call: every analysis window
// publishes a volume and a 32-band spectrum, and speech start/end follow a
// volume gate.
package beep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// Config holds the file session settings.
type Config struct {
	// Path is the audio file. Only WAV is decoded.
	Path string

	// Window is the analysis window (default 20ms).
	Window time.Duration

	// Realtime paces windows at wall-clock speed. When false the file is
	// analysed as fast as it decodes.
	Realtime bool

	// Threshold is the volume above which the assistant is speaking (default 0.02).
	Threshold float64

	// Hangover is the number of quiet windows before speech ends (default 8).
	Hangover int

	// Gain scales the window RMS into a volume (default 2).
	Gain float64
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = 20 * time.Millisecond
	}
	if c.Threshold <= 0 {
		c.Threshold = 0.02
	}
	if c.Hangover <= 0 {
		c.Hangover = 8
	}
	if c.Gain <= 0 {
		c.Gain = 2
	}
	return c
}

// Session streams an audio file as a voice call.
//
// Thread-safety: This implementation is thread-safe.
type Session struct {
	logger *slog.Logger
	bus    ports.EventBus
	cfg    Config

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewSession creates a session for cfg.Path.
func NewSession(bus ports.EventBus, cfg Config) *Session {
	return &Session{
		logger: logger.Nop(),
		bus:    bus,
		cfg:    cfg.withDefaults(),
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

// Start opens and decodes the file, publishes VoiceCallStartedEvent with the
// file's title and starts streaming.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return domain.ErrAlreadyStarted
	}

	path := s.cfg.Path
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".wav" {
		return domain.NewSourceError("open", path, fmt.Sprintf("extension %q not supported", ext), domain.ErrUnsupportedFormat)
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.NewSourceError("open", path, "cannot open file", err)
	}
	title := readTitle(f, path)

	streamer, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return domain.NewSourceError("decode", path, "cannot decode wav", errors.Join(domain.ErrUnsupportedFormat, err))
	}

	s.running = true
	s.stop = make(chan struct{})
	s.wg.Add(1)

	s.logger.Info("voice file session started",
		slog.String("path", path),
		slog.String("title", title),
		slog.Int("sample_rate", int(format.SampleRate)),
		slog.Int("channels", format.NumChannels))
	s.bus.Publish(domain.NewVoiceCallStartedEvent(title))

	go func(stop <-chan struct{}) {
		defer s.wg.Done()
		defer streamer.Close()
		s.stream(ctx, stop, streamer, format)
	}(s.stop)
	return nil
}

// stream publishes one volume and one bands event per window until the file
// ends or the session stops. It always finishes with VoiceCallEndedEvent.
func (s *Session) stream(ctx context.Context, stop <-chan struct{}, streamer beep.Streamer, format beep.Format) {
	n := max(format.SampleRate.N(s.cfg.Window), 1)
	buf := make([][2]float64, n)
	mono := make([]float64, n)
	bands := make([]float64, NumBins)
	analyser := NewAnalyser()

	var tick <-chan time.Time
	if s.cfg.Realtime {
		ticker := time.NewTicker(s.cfg.Window)
		defer ticker.Stop()
		tick = ticker.C
	}

	speaking := false
	quiet := 0
	defer func() {
		if speaking {
			s.bus.Publish(domain.NewVoiceSpeechEndedEvent())
		}
		s.bus.Publish(domain.NewVoiceCallEndedEvent())
		s.logger.Info("voice file session ended", slog.String("path", s.cfg.Path))
	}()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		read, ok := streamer.Stream(buf)
		if read > 0 {
			for i := 0; i < read; i++ {
				mono[i] = (buf[i][0] + buf[i][1]) / 2
			}
			volume := math.Min(1, RMS(mono[:read])*s.cfg.Gain)
			analyser.Push(mono[:read])

			switch {
			case volume >= s.cfg.Threshold:
				quiet = 0
				if !speaking {
					speaking = true
					s.bus.Publish(domain.NewVoiceSpeechStartedEvent())
				}
			case speaking:
				quiet++
				if quiet >= s.cfg.Hangover {
					speaking = false
					s.bus.Publish(domain.NewVoiceSpeechEndedEvent())
				}
			}
			s.bus.Publish(domain.NewVoiceVolumeEvent(volume))
			s.bus.Publish(domain.NewVoiceBandsEvent(analyser.Bands(bands)))
		}

		if !ok {
			if err := streamer.Err(); err != nil {
				srcErr := domain.NewSourceError("stream", s.cfg.Path, "decoding failed", err)
				s.logger.Warn("voice file stream failed", slog.Any("error", srcErr))
				s.bus.Publish(domain.NewVoiceErrorEvent(srcErr))
			}
			return
		}

		if tick != nil {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-tick:
			}
		}
	}
}

// Close stops streaming and waits for the stream goroutine to exit.
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
