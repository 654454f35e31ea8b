package domain

import "errors"

// Domain errors represent failures callers are expected to branch on.
// Adapters wrap them with %w so errors.Is keeps working through context.
var (
	// ErrCredential indicates the identity provider rejected or could not
	// produce credentials: missing or malformed key file, wrong credential
	// type, or a subject that is not authorised for the requested scopes.
	ErrCredential = errors.New("credential error")

	// ErrClientBuild indicates the API client could not be constructed for
	// the requested endpoint.
	ErrClientBuild = errors.New("client build error")

	// ErrUnsupportedEndpoint indicates an endpoint outside the fixed registry.
	ErrUnsupportedEndpoint = errors.New("unsupported endpoint")

	// ErrInvalidInput indicates malformed or missing caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthRequired indicates an interactive authorisation is needed but
	// no client secret is configured.
	ErrAuthRequired = errors.New("authentication required")
)
