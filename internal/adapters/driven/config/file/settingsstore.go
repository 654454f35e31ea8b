package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
	"github.com/custodia-labs/googlewrapper/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// EnvPrefix prefixes every environment override, e.g. GOOGLEWRAPPER_SUBJECT.
const EnvPrefix = "GOOGLEWRAPPER_"

// settingsFileName is the TOML file inside the config directory.
const settingsFileName = "config.toml"

// SettingsStore reads settings from a TOML file and overlays environment
// variables on top. Save writes only the file; the environment is never
// persisted.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
	environ  map[string]string
}

// NewSettingsStore creates a store rooted at configDir.
// If configDir is empty, defaults to ~/.googlewrapper.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	return &SettingsStore{filePath: filepath.Join(configDir, settingsFileName)}, nil
}

// DefaultConfigDir returns ~/.googlewrapper.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".googlewrapper"), nil
}

// withEnvironment replaces the process environment used for overrides.
func (s *SettingsStore) withEnvironment(environ map[string]string) *SettingsStore {
	s.environ = environ
	return s
}

// Load returns defaults, overlaid by the settings file if it exists, overlaid
// by GOOGLEWRAPPER_* environment variables.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No settings file yet, keep defaults.
	case err != nil:
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	default:
		if err := toml.Unmarshal(data, &settings); err != nil {
			return domain.Settings{}, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, s.filePath, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if s.environ != nil {
		opts.Environment = s.environ
	}
	if err := env.ParseWithOptions(&settings, opts); err != nil {
		return domain.Settings{}, fmt.Errorf("%w: environment overrides: %w", domain.ErrInvalidInput, err)
	}
	return settings, nil
}

// Save writes settings to the TOML file with restricted permissions.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0o600)
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}
