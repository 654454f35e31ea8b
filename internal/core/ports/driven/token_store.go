package driven

import (
	"context"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
)

// TokenStore persists interactive OAuth tokens so they can be reused
// across process runs.
type TokenStore interface {
	// Load returns the token stored under name.
	// Returns nil and no error if nothing is stored.
	Load(ctx context.Context, name string) (*domain.OAuthToken, error)

	// Save stores the token under name, replacing any previous value.
	Save(ctx context.Context, name string, token domain.OAuthToken) error

	// Delete removes the token stored under name. Missing entries are not an error.
	Delete(ctx context.Context, name string) error
}
