package google

import (
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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// jwtClaims is the subset of the service-account assertion we inspect.
type jwtClaims struct {
	Iss   string `json:"iss"`
	Scope string `json:"scope"`
	Sub   string `json:"sub"`
}

// fakeTokenServer is an identity-provider token endpoint that records every
// JWT assertion and rejects denied subjects.
type fakeTokenServer struct {
	*httptest.Server

	mu       sync.Mutex
	claims   []jwtClaims
	forms    []map[string]string
	denied   map[string]bool
	requests int
	// rejectRefresh answers refresh_token grants with invalid_grant.
	rejectRefresh bool
}

func newFakeTokenServer(t *testing.T) *fakeTokenServer {
	t.Helper()
	s := &fakeTokenServer{denied: make(map[string]bool)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *fakeTokenServer) deny(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[subject] = true
}

func (s *fakeTokenServer) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests++
	form := make(map[string]string)
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	s.forms = append(s.forms, form)

	var claims jwtClaims
	if assertion := r.PostForm.Get("assertion"); assertion != "" {
		parts := strings.Split(assertion, ".")
		if len(parts) == 3 {
			if raw, err := base64.RawURLEncoding.DecodeString(parts[1]); err == nil {
				_ = json.Unmarshal(raw, &claims)
			}
		}
		s.claims = append(s.claims, claims)
	}
	denied := s.denied[claims.Sub]
	rejectRefresh := s.rejectRefresh && r.PostForm.Get("grant_type") == "refresh_token"
	s.mu.Unlock()

	if rejectRefresh {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if denied {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized_client","error_description":"Client is unauthorized to retrieve access tokens"}`))
		return
	}
	_, _ = w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`))
}

func (s *fakeTokenServer) lastClaims(t *testing.T) jwtClaims {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.claims, "no assertion reached the token endpoint")
	return s.claims[len(s.claims)-1]
}

func (s *fakeTokenServer) lastForm(t *testing.T) map[string]string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.forms, "no request reached the token endpoint")
	return s.forms[len(s.forms)-1]
}

func (s *fakeTokenServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// writeServiceAccountKey writes a service-account key whose token_uri points
// at tokenURL and returns its path.
func writeServiceAccountKey(t *testing.T, dir, tokenURL string) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "demo-project",
		"private_key_id": "key-1",
		"private_key":    string(keyPEM),
		"client_email":   "wrapper@demo-project.iam.gserviceaccount.com",
		"client_id":      "1234567890",
		"token_uri":      tokenURL,
	})
	require.NoError(t, err)

	path := filepath.Join(dir, "service-account.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// writeClientSecret writes an installed-app OAuth client secret.
func writeClientSecret(t *testing.T, path, tokenURL string) {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"installed": map[string]any{
			"client_id":     "client-id.apps.googleusercontent.com",
			"client_secret": "client-secret",
			"auth_uri":      "https://accounts.example.com/o/oauth2/auth",
			"token_uri":     tokenURL,
			"redirect_uris": []string{"http://localhost"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
