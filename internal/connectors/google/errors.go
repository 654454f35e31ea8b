package google

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

// IsCredentialError returns true if the error originated in credential loading
// or the identity provider's token endpoint.
func IsCredentialError(err error) bool {
	if errors.Is(err, domain.ErrCredential) {
		return true
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return true
	}
	return IsUnauthorized(err) || IsForbidden(err)
}

// IsClientBuildError returns true if the error came from constructing an API client.
func IsClientBuildError(err error) bool {
	return errors.Is(err, domain.ErrClientBuild)
}

// WrapError tags identity-provider and Google API failures with the matching
// domain sentinel. Errors already carrying a sentinel pass through unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrCredential) || errors.Is(err, domain.ErrClientBuild) {
		return err
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.ErrorCode != "" {
			return fmt.Errorf("%w: %s: %w", domain.ErrCredential, rerr.ErrorCode, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrCredential, err)
	}

	if IsUnauthorized(err) || IsForbidden(err) {
		return fmt.Errorf("%w: %w", domain.ErrCredential, err)
	}
	return err
}

func hasStatus(err error, code int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return rerr.Response.StatusCode == code
	}
	return false
}
