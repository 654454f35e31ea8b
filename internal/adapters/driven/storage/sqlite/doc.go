// Package sqlite provides a SQLite-backed TokenStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Tokens live in a single tokens.db file inside the credential directory,
// one row per token name.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/ directory.
// Each migration is a pair of .up.sql and .down.sql files.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode.
package sqlite
