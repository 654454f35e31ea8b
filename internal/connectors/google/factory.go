package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
	"github.com/custodia-labs/googlewrapper/internal/core/ports/driven"
	"github.com/custodia-labs/googlewrapper/internal/logger"
)

// tokenRequestTimeout bounds each call to the identity provider.
const tokenRequestTimeout = 30 * time.Second

// Client is an API-bound service handle returned by BuildClient.
// The caller owns it; the factory keeps no reference.
type Client struct {
	// Endpoint is the registry key the client was built for.
	Endpoint domain.Endpoint
	// API is the client library's API name.
	API string
	// Version is the client library's API version.
	Version string
	// Service is the concrete *Service from google.golang.org/api
	// (e.g. *calendar.Service for EndpointCalendar).
	Service any
}

// CredentialFactory builds authenticated Google API clients.
// It holds only configuration and is safe for concurrent use.
type CredentialFactory struct {
	credentialsDir   string
	clientSecretFile string
	verify           bool
	tokenClient      *http.Client
	baseTransport    http.RoundTripper
	rateLimit        *RateLimitConfig
	defaultLimits    bool
	tokens           driven.TokenStore
	interactive      InteractiveOptions
}

// Option configures a CredentialFactory.
type Option func(*CredentialFactory)

// WithCredentialsDir sets the local credential directory.
func WithCredentialsDir(dir string) Option {
	return func(f *CredentialFactory) {
		if dir != "" {
			f.credentialsDir = dir
		}
	}
}

// WithClientSecretFile sets the OAuth client secret used by InteractiveSheets.
func WithClientSecretFile(path string) Option {
	return func(f *CredentialFactory) {
		f.clientSecretFile = path
	}
}

// WithVerify controls whether an access token is fetched while building a
// client. Disabled, authorisation problems surface on the first API call.
func WithVerify(verify bool) Option {
	return func(f *CredentialFactory) {
		f.verify = verify
	}
}

// WithHTTPClient sets the HTTP client used for identity-provider requests.
// Its transport is also the base transport for API requests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *CredentialFactory) {
		if c == nil {
			return
		}
		f.tokenClient = c
		if c.Transport != nil {
			f.baseTransport = c.Transport
		}
	}
}

// WithRateLimit throttles every built client with cfg. A non-positive
// RequestsPerSecond is ignored.
func WithRateLimit(cfg RateLimitConfig) Option {
	return func(f *CredentialFactory) {
		if cfg.RequestsPerSecond <= 0 {
			return
		}
		f.rateLimit = &cfg
	}
}

// WithDefaultRateLimits throttles built clients using DefaultRateLimits.
func WithDefaultRateLimits() Option {
	return func(f *CredentialFactory) {
		f.defaultLimits = true
	}
}

// WithTokenStore sets where interactive tokens are cached.
func WithTokenStore(store driven.TokenStore) Option {
	return func(f *CredentialFactory) {
		f.tokens = store
	}
}

// WithInteractive configures the interactive authorisation flow.
func WithInteractive(opts InteractiveOptions) Option {
	return func(f *CredentialFactory) {
		f.interactive = opts
	}
}

// NewCredentialFactory creates a factory. Defaults: credential directory
// "credentials", eager token verification on, no throttling.
func NewCredentialFactory(opts ...Option) *CredentialFactory {
	f := &CredentialFactory{
		credentialsDir: domain.DefaultCredentialsDir,
		verify:         true,
		tokenClient:    &http.Client{Timeout: tokenRequestTimeout},
		baseTransport:  http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CredentialsDir returns the configured credential directory.
func (f *CredentialFactory) CredentialsDir() string {
	return f.credentialsDir
}

// ClientSecretPath returns the OAuth client secret path for the interactive flow.
func (f *CredentialFactory) ClientSecretPath() string {
	if f.clientSecretFile != "" {
		return f.clientSecretFile
	}
	return filepath.Join(f.credentialsDir, domain.DefaultClientSecretName)
}

// EnsureCredentialDirectory creates the credential directory if it does not
// exist. It is idempotent and safe to race with other processes.
func (f *CredentialFactory) EnsureCredentialDirectory() error {
	if err := os.MkdirAll(f.credentialsDir, 0o700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}
	logger.Debug("credentials directory ready: %s", f.credentialsDir)
	return nil
}

// BuildClient authenticates as the service account in keyPath, impersonating
// subject with the endpoint's fixed scopes, and returns a service handle.
//
// Credential failures match domain.ErrCredential. Construction failures,
// unknown endpoints and credential-only endpoints match domain.ErrClientBuild.
func (f *CredentialFactory) BuildClient(ctx context.Context, e domain.Endpoint, keyPath, subject string) (*Client, error) {
	spec, err := Lookup(e)
	if err != nil {
		return nil, err
	}
	if spec.CredentialOnly() {
		return nil, fmt.Errorf("%w: %s has no client wrapper, use BigQueryCredentials", domain.ErrClientBuild, e)
	}

	logger.Section("Build Client")
	logger.Debug("endpoint=%s api=%s version=%s subject=%q", e, spec.API, spec.Version, subject)

	creds, err := f.serviceAccountCredentials(ctx, domain.ServiceAccountRequest{
		KeyPath: keyPath,
		Subject: subject,
		Scopes:  spec.Scopes,
	})
	if err != nil {
		return nil, err
	}

	svc, err := spec.build(ctx, option.WithHTTPClient(f.apiClient(e, creds.TokenSource)))
	if err != nil {
		return nil, fmt.Errorf("%w: build %s %s: %w", domain.ErrClientBuild, spec.API, spec.Version, err)
	}

	logger.Info("built %s %s client", spec.API, spec.Version)
	return &Client{
		Endpoint: e,
		API:      spec.API,
		Version:  spec.Version,
		Service:  svc,
	}, nil
}

// BigQueryCredentials returns service-account credentials scoped for BigQuery.
// No client is built: pass the result to the BigQuery client library, e.g.
// bigquery.NewClient(ctx, creds.ProjectID, option.WithCredentials(creds)).
func (f *CredentialFactory) BigQueryCredentials(
	ctx context.Context, keyPath, subject string,
) (*googleoauth.Credentials, error) {
	logger.Section("BigQuery Credentials")
	return f.serviceAccountCredentials(ctx, domain.ServiceAccountRequest{
		KeyPath: keyPath,
		Subject: subject,
		Scopes:  Scopes(domain.EndpointBigQuery),
	})
}

// serviceAccountCredentials loads the key file and, when verification is on,
// fetches one token so rejected subjects fail here rather than on first use.
func (f *CredentialFactory) serviceAccountCredentials(
	ctx context.Context, req domain.ServiceAccountRequest,
) (*googleoauth.Credentials, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCredential, err)
	}

	data, err := os.ReadFile(req.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read key file: %w", domain.ErrCredential, err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.tokenClient)
	creds, err := googleoauth.CredentialsFromJSONWithTypeAndParams(ctx, data, googleoauth.ServiceAccount,
		googleoauth.CredentialsParams{
			Scopes:  req.Scopes,
			Subject: req.Subject,
		})
	if err != nil {
		return nil, fmt.Errorf("%w: parse key file %s: %w", domain.ErrCredential, req.KeyPath, err)
	}
	logger.Debug("loaded service account key %s (project %q)", req.KeyPath, creds.ProjectID)

	if f.verify {
		if _, err := creds.TokenSource.Token(); err != nil {
			return nil, fmt.Errorf("%w: obtain token for subject %q: %w", domain.ErrCredential, req.Subject, err)
		}
		logger.Debug("token issued for scopes %v", req.Scopes)
	}
	return creds, nil
}

// apiClient returns an HTTP client authorising requests with ts, throttled
// when a rate limit applies to e.
func (f *CredentialFactory) apiClient(e domain.Endpoint, ts oauth2.TokenSource) *http.Client {
	base := f.baseTransport
	if limiter := f.limiterFor(e); limiter != nil {
		base = &throttledTransport{limiter: limiter, base: base}
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   base,
		},
	}
}

func (f *CredentialFactory) limiterFor(e domain.Endpoint) *RateLimiter {
	if f.rateLimit != nil {
		return NewRateLimiter(*f.rateLimit)
	}
	if f.defaultLimits {
		if cfg, ok := DefaultRateLimits[e]; ok {
			return NewRateLimiter(cfg)
		}
	}
	return nil
}
