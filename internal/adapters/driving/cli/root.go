// Package cli implements the googlewrapper command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	configfile "github.com/custodia-labs/googlewrapper/internal/adapters/driven/config/file"
	storagefile "github.com/custodia-labs/googlewrapper/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/googlewrapper/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/googlewrapper/internal/adapters/driving/oauth"
	"github.com/custodia-labs/googlewrapper/internal/connectors/google"
	"github.com/custodia-labs/googlewrapper/internal/core/domain"
	"github.com/custodia-labs/googlewrapper/internal/core/ports/driven"
	"github.com/custodia-labs/googlewrapper/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// Global flags.
var (
	verbose        bool
	configDir      string
	credentialsDir string
)

// Resolved in PersistentPreRunE.
var (
	settings      domain.Settings
	settingsStore driven.SettingsStore
)

// Interactive flow hooks, replaced in tests.
var (
	newReceiver google.ReceiverFactory = func(state string) (google.CodeReceiver, error) {
		return oauth.Listen(state)
	}
	openURL = openBrowserIfTerminal
)

var rootCmd = &cobra.Command{
	Use:   "googlewrapper",
	Short: "Build authenticated Google API clients",
	Long: `googlewrapper builds authenticated clients for Google Search Console,
Analytics, Calendar, Sheets, BigQuery, Gmail, Drive and Docs from a
service-account key with domain-wide delegation.

Settings are read from <config-dir>/config.toml, then GOOGLEWRAPPER_*
environment variables, then flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "settings directory (default ~/.googlewrapper)")
	rootCmd.PersistentFlags().StringVar(&credentialsDir, "credentials-dir", "",
		"credential directory (default \"credentials\")")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadSettings(cmd *cobra.Command, _ []string) error {
	store, err := configfile.NewSettingsStore(configDir)
	if err != nil {
		return err
	}
	loaded, err := store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if credentialsDir != "" {
		loaded.CredentialsDir = credentialsDir
	}
	if verbose {
		loaded.Verbose = true
	}

	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetVerbose(loaded.Verbose)
	logger.Debug("settings loaded from %s", store.Path())

	settings = loaded
	settingsStore = store
	return nil
}

// newFactory wires a CredentialFactory from the resolved settings. The
// returned func releases the token store and must always be called.
func newFactory(cmd *cobra.Command) (*google.CredentialFactory, func(), error) {
	tokens, closeTokens, err := openTokenStore()
	if err != nil {
		return nil, nil, err
	}

	opts := []google.Option{
		google.WithCredentialsDir(settings.CredentialsDir),
		google.WithVerify(settings.Verify),
		google.WithTokenStore(tokens),
		google.WithInteractive(google.InteractiveOptions{
			NewReceiver: newReceiver,
			OpenURL:     openURL,
			Prompt:      cmd.OutOrStdout(),
		}),
	}
	if settings.ClientSecretFile != "" {
		opts = append(opts, google.WithClientSecretFile(settings.ClientSecretFile))
	}
	if settings.RateLimit.Enabled() {
		opts = append(opts, google.WithRateLimit(google.RateLimitConfig{
			RequestsPerSecond: settings.RateLimit.RequestsPerSecond,
			BurstSize:         settings.RateLimit.Burst,
		}))
	} else {
		opts = append(opts, google.WithDefaultRateLimits())
	}
	return google.NewCredentialFactory(opts...), closeTokens, nil
}

// openTokenStore opens the configured token backend. The sqlite database is
// opened lazily so commands that never touch tokens do not create it.
func openTokenStore() (driven.TokenStore, func(), error) {
	switch settings.TokenBackend {
	case "", domain.TokenBackendFile:
		return storagefile.NewTokenStore(settings.CredentialsDir), func() {}, nil
	case domain.TokenBackendSQLite:
		lazy := &lazySQLiteTokens{dir: settings.CredentialsDir}
		return lazy, lazy.close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown token_backend %q", domain.ErrInvalidInput, settings.TokenBackend)
	}
}

// serviceAccountArgs resolves --key and --subject against settings.
func serviceAccountArgs(key, subject string) (string, string, error) {
	if key == "" {
		key = settings.KeyFile
	}
	if subject == "" {
		subject = settings.Subject
	}
	if key == "" {
		return "", "", fmt.Errorf("%w: --key is required (or set key_file)", domain.ErrInvalidInput)
	}
	return key, subject, nil
}

func openBrowserIfTerminal(url string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	return oauth.OpenBrowser(url)
}

// lazySQLiteTokens opens the sqlite token database on first use.
type lazySQLiteTokens struct {
	dir   string
	store *sqlite.Store
}

func (l *lazySQLiteTokens) tokens() (driven.TokenStore, error) {
	if l.store == nil {
		s, err := sqlite.NewStore(l.dir)
		if err != nil {
			return nil, err
		}
		l.store = s
		logger.Debug("token database %s", s.Path())
	}
	return l.store.TokenStore(), nil
}

func (l *lazySQLiteTokens) Load(ctx context.Context, name string) (*domain.OAuthToken, error) {
	t, err := l.tokens()
	if err != nil {
		return nil, err
	}
	return t.Load(ctx, name)
}

func (l *lazySQLiteTokens) Save(ctx context.Context, name string, token domain.OAuthToken) error {
	t, err := l.tokens()
	if err != nil {
		return err
	}
	return t.Save(ctx, name, token)
}

func (l *lazySQLiteTokens) Delete(ctx context.Context, name string) error {
	t, err := l.tokens()
	if err != nil {
		return err
	}
	return t.Delete(ctx, name)
}

func (l *lazySQLiteTokens) close() {
	if l.store == nil {
		return
	}
	if err := l.store.Close(); err != nil {
		logger.Warn("close token database: %v", err)
	}
}
