// Package memory provides preference persistence backed by Fyne's preferences store.
package memory

import (
	"encoding/json"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

const (
	keyQuality    = "preferences.quality"
	keyWindowSize = "preferences.window_size"
)

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
// This provides a thin wrapper around Fyne's preferences system with proper error handling.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences' repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// SaveQualityOverride persists a forced quality tier.
func (r *PreferencesRepository) SaveQualityOverride(tier string) error {
	switch tier {
	case "", domain.TierDesktop.String(), domain.TierMobile.String(), domain.TierLow.String():
	default:
		return domain.NewValidationError("quality", tier, "must be desktop, mobile, low or empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tier == "" {
		r.prefs.RemoveValue(keyQuality)
		return nil
	}
	r.prefs.SetString(keyQuality, tier)
	return nil
}

// LoadQualityOverride retrieves the forced quality tier.
func (r *PreferencesRepository) LoadQualityOverride() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.StringWithFallback(keyQuality, ""), nil
}

// SaveWindowSize persists the last window size.
func (r *PreferencesRepository) SaveWindowSize(size ports.WindowSize) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(size)
	if err != nil {
		return domain.NewSourceError("save", keyWindowSize, "failed to marshal window size", err)
	}

	r.prefs.SetString(keyWindowSize, string(data))
	return nil
}

// LoadWindowSize retrieves the last window size.
func (r *PreferencesRepository) LoadWindowSize() (ports.WindowSize, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := r.prefs.String(keyWindowSize)
	if data == "" {
		return ports.WindowSize{}, nil
	}

	var size ports.WindowSize
	if err := json.Unmarshal([]byte(data), &size); err != nil {
		return ports.WindowSize{}, domain.NewSourceError("load", keyWindowSize, "failed to unmarshal window size", err)
	}

	return size, nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyQuality)
	r.prefs.RemoveValue(keyWindowSize)

	return nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
