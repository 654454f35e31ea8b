package driven

import "github.com/custodia-labs/googlewrapper/internal/core/domain"

// SettingsStore loads and persists user settings.
// Implementations handle the file format and environment overrides.
type SettingsStore interface {
	// Load returns the effective settings. Missing files yield defaults.
	Load() (domain.Settings, error)

	// Save persists settings to storage.
	Save(settings domain.Settings) error

	// Path returns the settings file path.
	Path() string
}
