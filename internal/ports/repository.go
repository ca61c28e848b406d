// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

// WindowSize is a persisted window geometry in logical units.
type WindowSize struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// PreferencesRepository handles the persistence of user preferences.
// This abstracts the Fyne preferences storage.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// Quality preferences

	// SaveQualityOverride persists a forced quality tier name ("desktop", "mobile",
	// "low"). An empty string clears the override.
	//
	// Returns an error if saving fails.
	SaveQualityOverride(tier string) error

	// LoadQualityOverride retrieves the forced quality tier.
	// If nothing was saved, returns "" (derive from device signals).
	//
	// Returns the tier name or an error if loading fails.
	LoadQualityOverride() (string, error)

	// Window preferences

	// SaveWindowSize persists the last window size.
	//
	// Returns an error if saving fails.
	SaveWindowSize(size WindowSize) error

	// LoadWindowSize retrieves the last window size.
	// If nothing was saved, returns the zero WindowSize (not an error).
	//
	// Returns the size or an error if loading fails.
	LoadWindowSize() (WindowSize, error)

	// Utility methods

	// Clear removes all saved preferences.
	//
	// Returns an error if clearing fails.
	Clear() error
}
