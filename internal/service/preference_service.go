// Package service provides the application logic of Singularity: the voice
// session state machine and persisted user preferences.
package service

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/singularity/internal/blackhole"
	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/logger"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// Minimum persisted window size; smaller saved values are ignored.
const (
	minWindowWidth  = 200
	minWindowHeight = 150
)

// PreferenceService manages application preferences and settings.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository

	// Cached preferences
	quality    *domain.QualityTier
	window     ports.WindowSize
	cacheValid bool

	// Concurrency control
	mu sync.RWMutex
}

// NewPreferenceService creates a new preference service and loads the saved
// values into its cache.
func NewPreferenceService(log *slog.Logger, repository ports.PreferencesRepository) *PreferenceService {
	if log == nil {
		log = logger.Nop()
	}
	service := &PreferenceService{
		logger:     log,
		repository: repository,
	}

	log.Debug("preference service initialized")

	service.loadPreferences()

	return service
}

// loadPreferences loads all preferences from repository into cache.
func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name, err := s.repository.LoadQualityOverride(); err != nil {
		s.logger.Warn("failed to load quality override", slog.Any("error", err))
	} else if name != "" {
		if tier, ok := blackhole.ParseTier(name); ok {
			s.quality = &tier
		} else {
			s.logger.Warn("ignoring unknown quality override", slog.String("tier", name))
		}
	}

	if size, err := s.repository.LoadWindowSize(); err != nil {
		s.logger.Warn("failed to load window size", slog.Any("error", err))
	} else if validWindowSize(size) {
		s.window = size
	}

	s.cacheValid = true
}

// QualityOverride returns the forced quality tier, or nil when the tier
// should be derived from the device.
func (s *PreferenceService) QualityOverride() *domain.QualityTier {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.quality == nil {
		return nil
	}
	tier := *s.quality
	return &tier
}

// SetQualityOverride saves a forced quality tier. nil clears the override.
func (s *PreferenceService) SetQualityOverride(tier *domain.QualityTier) error {
	name := ""
	if tier != nil {
		if _, ok := blackhole.ParseTier(tier.String()); !ok {
			return domain.NewValidationError("quality", int(*tier), "unknown quality tier")
		}
		name = tier.String()
	}

	if err := s.repository.SaveQualityOverride(name); err != nil {
		return err
	}

	s.mu.Lock()
	if tier != nil {
		t := *tier
		s.quality = &t
	} else {
		s.quality = nil
	}
	s.mu.Unlock()

	s.logger.Info("quality override saved", slog.String("tier", name))
	return nil
}

// WindowSize returns the saved window size and whether one exists.
func (s *PreferenceService) WindowSize() (ports.WindowSize, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.window, validWindowSize(s.window)
}

// SetWindowSize saves the window size. Sizes below the minimum are rejected.
func (s *PreferenceService) SetWindowSize(size ports.WindowSize) error {
	if !validWindowSize(size) {
		return domain.NewValidationError("window_size", size, "window is too small to restore")
	}

	if err := s.repository.SaveWindowSize(size); err != nil {
		return err
	}

	s.mu.Lock()
	s.window = size
	s.mu.Unlock()
	return nil
}

// ResetToDefaults clears every saved preference.
func (s *PreferenceService) ResetToDefaults() error {
	if err := s.repository.Clear(); err != nil {
		return err
	}

	s.mu.Lock()
	s.quality = nil
	s.window = ports.WindowSize{}
	s.mu.Unlock()
	return nil
}

// Shutdown cleans up resources.
func (s *PreferenceService) Shutdown() error {
	return nil
}

func validWindowSize(size ports.WindowSize) bool {
	return size.Width >= minWindowWidth && size.Height >= minWindowHeight
}
