package domain

// DefaultCredentialsDir is the credential directory used when none is configured.
const DefaultCredentialsDir = "credentials"

// DefaultClientSecretName is the OAuth client secret file looked up inside the
// credential directory for the interactive flow.
const DefaultClientSecretName = "client_secret.json"

// Token backends for cached interactive tokens.
const (
	// TokenBackendFile stores one JSON file per token.
	TokenBackendFile = "file"
	// TokenBackendSQLite stores tokens in tokens.db.
	TokenBackendSQLite = "sqlite"
)

// Settings holds user configuration. Values come from the settings file,
// then environment variables, then command-line flags.
type Settings struct {
	// CredentialsDir holds the client secret and cached interactive tokens.
	CredentialsDir string `toml:"credentials_dir" env:"CREDENTIALS_DIR"`
	// KeyFile is the default service-account key file.
	KeyFile string `toml:"key_file" env:"KEY_FILE"`
	// Subject is the default principal to impersonate.
	Subject string `toml:"subject" env:"SUBJECT"`
	// ClientSecretFile overrides <CredentialsDir>/client_secret.json.
	ClientSecretFile string `toml:"client_secret_file" env:"CLIENT_SECRET_FILE"`
	// TokenBackend selects where interactive tokens are cached.
	TokenBackend string `toml:"token_backend" env:"TOKEN_BACKEND"`
	// Verify fetches a token eagerly when building clients.
	Verify bool `toml:"verify" env:"VERIFY"`
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose" env:"VERBOSE"`
	// RateLimit throttles API requests issued through built clients.
	RateLimit RateLimitSettings `toml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// RateLimitSettings configures request throttling. Zero disables it.
type RateLimitSettings struct {
	RequestsPerSecond float64 `toml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int     `toml:"burst" env:"BURST"`
}

// Enabled returns true if throttling is configured.
func (r RateLimitSettings) Enabled() bool {
	return r.RequestsPerSecond > 0
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		CredentialsDir: DefaultCredentialsDir,
		TokenBackend:   TokenBackendFile,
		Verify:         true,
	}
}
