// Package file provides filesystem-backed implementations of driven port interfaces.
//
// Adapters:
//   - TokenStore: JSON token files inside the credential directory
package file
