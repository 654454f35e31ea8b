package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/googlewrapper/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/googlewrapper/internal/core/domain"
	"github.com/custodia-labs/googlewrapper/internal/core/ports/driven"
)

// DatabaseName is the file created inside the credential directory.
const DatabaseName = "tokens.db"

// Store is a SQLite database holding cached OAuth tokens.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) dir/tokens.db and applies migrations.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating credential directory: %w", err)
	}

	dbPath := filepath.Join(dir, DatabaseName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := os.Chmod(dbPath, 0o600); err != nil {
		db.Close()
		return nil, fmt.Errorf("restricting database permissions: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// TokenStore returns a TokenStore backed by this database.
func (s *Store) TokenStore() driven.TokenStore {
	return &tokenStore{store: s}
}

// migrate applies every NNN_*.up.sql newer than the recorded version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

// tokenStore implements driven.TokenStore.
type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Load returns the token stored under name, or nil if none exists.
func (t *tokenStore) Load(ctx context.Context, name string) (*domain.OAuthToken, error) {
	var (
		tok    domain.OAuthToken
		expiry int64
	)
	err := t.store.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, token_type, expiry
		FROM tokens WHERE name = ?
	`, name).Scan(&tok.AccessToken, &tok.RefreshToken, &tok.TokenType, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying token %q: %w", name, err)
	}
	if expiry != 0 {
		tok.Expiry = time.Unix(0, expiry)
	}
	return &tok, nil
}

// Save stores or replaces the token under name.
func (t *tokenStore) Save(ctx context.Context, name string, token domain.OAuthToken) error {
	if name == "" {
		return fmt.Errorf("%w: empty token name", domain.ErrInvalidInput)
	}
	var expiry int64
	if !token.Expiry.IsZero() {
		expiry = token.Expiry.UnixNano()
	}

	_, err := t.store.db.ExecContext(ctx, `
		INSERT INTO tokens (name, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`, name, token.AccessToken, token.RefreshToken, token.TokenType, expiry)
	if err != nil {
		return fmt.Errorf("saving token %q: %w", name, err)
	}
	return nil
}

// Delete removes the token under name. Deleting a missing token is not an error.
func (t *tokenStore) Delete(ctx context.Context, name string) error {
	if _, err := t.store.db.ExecContext(ctx, "DELETE FROM tokens WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting token %q: %w", name, err)
	}
	return nil
}
