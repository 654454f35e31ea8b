// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// The Google connector depends on these interfaces, and infrastructure
// adapters implement them.
//
//   - TokenStore: Interactive OAuth token persistence (credential directory)
//   - SettingsStore: User settings (TOML file plus environment)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
