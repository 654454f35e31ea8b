// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - SettingsStore: TOML settings file with GOOGLEWRAPPER_ environment overrides
package file
