package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
	"github.com/custodia-labs/googlewrapper/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore keeps one JSON file per token in the credential directory,
// e.g. credentials/sheets.json. Files are written with mode 0600.
type TokenStore struct {
	mu  sync.Mutex
	dir string
}

// NewTokenStore creates a token store rooted at dir.
// The directory is created lazily on first Save.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{dir: dir}
}

// Dir returns the directory tokens are stored in.
func (s *TokenStore) Dir() string {
	return s.dir
}

// Load reads the token stored under name. Returns nil if the file does not exist.
func (s *TokenStore) Load(_ context.Context, name string) (*domain.OAuthToken, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token %s: %w", path, err)
	}

	var tok domain.OAuthToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return &tok, nil
}

// Save writes the token under name, replacing any previous file atomically.
func (s *TokenStore) Save(_ context.Context, name string, token domain.OAuthToken) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write token %s: %w", path, err)
	}
	return nil
}

// Delete removes the token file for name. Missing files are not an error.
func (s *TokenStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete token %s: %w", path, err)
	}
	return nil
}

// path maps a token name to its file. Names must be plain file stems.
func (s *TokenStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: token name %q", domain.ErrInvalidInput, name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}
