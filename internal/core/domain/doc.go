// Package domain defines the core types for googlewrapper.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Endpoint: A supported Google API (Search Console, Gmail, ...)
//   - ServiceAccountRequest: Key file, impersonated subject and scopes
//   - Sentinel errors shared by every adapter
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
