package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
	"github.com/custodia-labs/googlewrapper/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
// Tokens live only as long as the process; useful for tests and for
// callers that must not touch the filesystem.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.OAuthToken
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]domain.OAuthToken),
	}
}

// Load returns the token stored under name, or nil if absent.
func (s *TokenStore) Load(_ context.Context, name string) (*domain.OAuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.tokens[name]
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

// Save stores the token under name.
func (s *TokenStore) Save(_ context.Context, name string, token domain.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[name] = token
	return nil
}

// Delete removes the token stored under name.
func (s *TokenStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, name)
	return nil
}

// Len returns the number of stored tokens.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
