package google

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
	"github.com/custodia-labs/googlewrapper/internal/core/ports/driven"
	"github.com/custodia-labs/googlewrapper/internal/logger"
)

// persistingTokenSource writes refreshed interactive tokens back to a
// TokenStore so the next process run can reuse them.
type persistingTokenSource struct {
	ctx   context.Context
	name  string
	store driven.TokenStore
	base  oauth2.TokenSource

	mu   sync.Mutex
	last string
}

// newPersistingTokenSource wraps base. initial is the token already held in
// the store; it is not written again.
func newPersistingTokenSource(
	ctx context.Context, name string, store driven.TokenStore, base oauth2.TokenSource, initial *oauth2.Token,
) oauth2.TokenSource {
	ts := &persistingTokenSource{
		ctx:   ctx,
		name:  name,
		store: store,
		base:  base,
	}
	if initial != nil {
		ts.last = initial.AccessToken
	}
	return ts
}

// Token implements oauth2.TokenSource.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, WrapError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken == s.last || s.store == nil {
		return tok, nil
	}
	if err := s.store.Save(s.ctx, s.name, toDomainToken(tok)); err != nil {
		// The token is still usable for this run.
		logger.Warn("persist token %q: %v", s.name, err)
		return tok, nil
	}
	logger.Debug("persisted refreshed token %q", s.name)
	s.last = tok.AccessToken
	return tok, nil
}

func toDomainToken(t *oauth2.Token) domain.OAuthToken {
	return domain.OAuthToken{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

func toOAuth2Token(t *domain.OAuthToken) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}
