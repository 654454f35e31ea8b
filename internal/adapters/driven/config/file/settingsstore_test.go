package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
)

func newTestStore(t *testing.T, environ map[string]string) *SettingsStore {
	t.Helper()
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)
	if environ == nil {
		environ = map[string]string{}
	}
	return store.withEnvironment(environ)
}

func TestNewSettingsStore_Path(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSettingsStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewSettingsStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewSettingsStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".googlewrapper", "config.toml"), store.Path())
}

func TestSettingsStore_LoadMissingFileReturnsDefaults(t *testing.T) {
	store := newTestStore(t, nil)

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestSettingsStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t, nil)
	want := domain.Settings{
		CredentialsDir:   "/srv/creds",
		KeyFile:          "/srv/creds/key.json",
		Subject:          "reports@example.com",
		ClientSecretFile: "/srv/creds/secret.json",
		Verify:           false,
		RateLimit:        domain.RateLimitSettings{RequestsPerSecond: 2.5, Burst: 4},
	}

	require.NoError(t, store.Save(want))
	got, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSettingsStore_PartialFileKeepsDefaults(t *testing.T) {
	store := newTestStore(t, nil)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`subject = "a@example.com"`+"\n"), 0o600))

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, "a@example.com", settings.Subject)
	assert.Equal(t, domain.DefaultCredentialsDir, settings.CredentialsDir)
	assert.True(t, settings.Verify)
}

func TestSettingsStore_NestedRateLimitTable(t *testing.T) {
	store := newTestStore(t, nil)
	content := "[rate_limit]\nrequests_per_second = 5.0\nburst = 10\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o600))

	settings, err := store.Load()

	require.NoError(t, err)
	assert.True(t, settings.RateLimit.Enabled())
	assert.InDelta(t, 5.0, settings.RateLimit.RequestsPerSecond, 0.0001)
	assert.Equal(t, 10, settings.RateLimit.Burst)
}

func TestSettingsStore_EnvironmentOverridesFile(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"GOOGLEWRAPPER_SUBJECT":                        "env@example.com",
		"GOOGLEWRAPPER_VERIFY":                         "false",
		"GOOGLEWRAPPER_RATE_LIMIT_REQUESTS_PER_SECOND": "1.5",
		"GOOGLEWRAPPER_CREDENTIALS_DIR":                "/env/creds",
	})
	require.NoError(t, os.WriteFile(store.Path(), []byte(`subject = "file@example.com"`+"\n"), 0o600))

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, "env@example.com", settings.Subject)
	assert.Equal(t, "/env/creds", settings.CredentialsDir)
	assert.False(t, settings.Verify)
	assert.InDelta(t, 1.5, settings.RateLimit.RequestsPerSecond, 0.0001)
}

func TestSettingsStore_InvalidEnvironmentValue(t *testing.T) {
	store := newTestStore(t, map[string]string{"GOOGLEWRAPPER_VERIFY": "sometimes"})

	_, err := store.Load()

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSettingsStore_MalformedFile(t *testing.T) {
	store := newTestStore(t, nil)
	require.NoError(t, os.WriteFile(store.Path(), []byte("subject = [unterminated"), 0o600))

	_, err := store.Load()

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSettingsStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(domain.DefaultSettings()))

	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}
