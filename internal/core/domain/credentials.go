package domain

import (
	"fmt"
	"strings"
)

// ServiceAccountRequest describes one credential request against the
// identity provider. It is built per call and never persisted.
type ServiceAccountRequest struct {
	// KeyPath is the service-account key file (JSON) on disk.
	KeyPath string
	// Subject is the principal to impersonate (domain-wide delegation).
	// Empty means the service account acts as itself.
	Subject string
	// Scopes is the ordered OAuth scope set for the target endpoint.
	Scopes []string
}

// Validate checks the request carries enough information to authenticate.
func (r ServiceAccountRequest) Validate() error {
	if strings.TrimSpace(r.KeyPath) == "" {
		return fmt.Errorf("%w: key path is required", ErrInvalidInput)
	}
	if len(r.Scopes) == 0 {
		return fmt.Errorf("%w: at least one scope is required", ErrInvalidInput)
	}
	return nil
}
