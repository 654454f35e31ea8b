package cli

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/googlewrapper/internal/connectors/google"
)

// fakeGoogle serves the token endpoint and a BigQuery datasets listing.
func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if strings.Contains(r.PostForm.Get("assertion"), ".") && isBlocked(r.PostForm.Get("assertion")) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized_client","error_description":"Client is unauthorized"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/projects/demo-project/datasets") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"bigquery#datasetList","datasets":[
			{"datasetReference":{"projectId":"demo-project","datasetId":"sales"}},
			{"datasetReference":{"projectId":"demo-project","datasetId":"marketing"}}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// blockedSubject is rejected by fakeGoogle's token endpoint.
const blockedSubject = "blocked@example.com"

func isBlocked(assertion string) bool {
	parts := strings.Split(assertion, ".")
	if len(parts) != 3 {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	var claims struct {
		Sub string `json:"sub"`
	}
	_ = json.Unmarshal(raw, &claims)
	return claims.Sub == blockedSubject
}

func writeKey(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "demo-project",
		"private_key_id": "key-1",
		"private_key":    string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
		"client_email":   "wrapper@demo-project.iam.gserviceaccount.com",
		"client_id":      "1234567890",
		"token_uri":      tokenURL,
	})
	require.NoError(t, err)

	path := filepath.Join(dir, "key.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func writeSecret(t *testing.T, path, tokenURL string) {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"installed": map[string]any{
			"client_id":     "client-id.apps.googleusercontent.com",
			"client_secret": "client-secret",
			"auth_uri":      "https://accounts.google.com/o/oauth2/auth",
			"token_uri":     tokenURL,
			"redirect_uris": []string{"http://localhost"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

// fakeReceiver hands back a fixed code.
type fakeReceiver struct{}

func (fakeReceiver) RedirectURI() string                       { return "http://127.0.0.1:8085/callback" }
func (fakeReceiver) WaitForCode(time.Duration) (string, error) { return "auth-code", nil }
func (fakeReceiver) Stop() error                               { return nil }

// execute runs the root command with a fresh config directory and clean
// flag state, returning combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbose, configDir, credentialsDir = false, "", ""
	connectKey, connectSubject = "", ""
	bqKey, bqSubject, bqProject = "", "", ""

	origReceiver, origOpen := newReceiver, openURL
	newReceiver = func(string) (google.CodeReceiver, error) { return fakeReceiver{}, nil }
	openURL = func(string) error { return nil }
	t.Cleanup(func() {
		newReceiver, openURL = origReceiver, origOpen
		rootCmd.SetArgs(nil)
	})

	hasConfigDir := false
	for _, a := range args {
		if a == "--config-dir" {
			hasConfigDir = true
		}
	}
	if !hasConfigDir {
		args = append(args, "--config-dir", t.TempDir())
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}
