package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
)

func TestConnectCmd_Flags(t *testing.T) {
	require.NotNil(t, connectCmd.Flags().Lookup("key"))
	require.NotNil(t, connectCmd.Flags().Lookup("subject"))
	assert.Equal(t, "k", connectCmd.Flags().Lookup("key").Shorthand)
}

func TestConnectCmd_BuildsClient(t *testing.T) {
	srv := fakeGoogle(t)
	key := writeKey(t, t.TempDir(), srv.URL+"/token")

	out, err := execute(t, "connect", "gsc", "--key", key, "--subject", "seo@example.com")

	require.NoError(t, err)
	assert.Contains(t, out, "Connected to searchconsole: searchconsole v1 as seo@example.com")
}

func TestConnectCmd_KeyFromSettings(t *testing.T) {
	srv := fakeGoogle(t)
	key := writeKey(t, t.TempDir(), srv.URL+"/token")
	t.Setenv("GOOGLEWRAPPER_KEY_FILE", key)

	out, err := execute(t, "connect", "calendar")

	require.NoError(t, err)
	assert.Contains(t, out, "calendar v3 as (service account)")
}

func TestConnectCmd_UnauthorisedSubject(t *testing.T) {
	srv := fakeGoogle(t)
	key := writeKey(t, t.TempDir(), srv.URL+"/token")

	_, err := execute(t, "connect", "gmail", "--key", key, "--subject", blockedSubject)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCredential))
}

func TestConnectCmd_MissingKeyFile(t *testing.T) {
	_, err := execute(t, "connect", "drive", "--key", filepath.Join(t.TempDir(), "nope.json"))

	assert.True(t, errors.Is(err, domain.ErrCredential))
}

func TestConnectCmd_UnknownEndpoint(t *testing.T) {
	_, err := execute(t, "connect", "youtube", "--key", "k.json")

	assert.True(t, errors.Is(err, domain.ErrUnsupportedEndpoint))
}

func TestConnectCmd_BigQueryIsCredentialOnly(t *testing.T) {
	srv := fakeGoogle(t)
	key := writeKey(t, t.TempDir(), srv.URL+"/token")

	_, err := execute(t, "connect", "bigquery", "--key", key)

	assert.True(t, errors.Is(err, domain.ErrClientBuild))
}

func TestConnectCmd_RequiresKey(t *testing.T) {
	_, err := execute(t, "connect", "sheets")

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
