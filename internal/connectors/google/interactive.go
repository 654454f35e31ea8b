package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
	"github.com/custodia-labs/googlewrapper/internal/logger"
)

// sheetsTokenName is the token store entry used by InteractiveSheets.
const sheetsTokenName = "sheets"

// defaultAuthTimeout bounds how long the flow waits for the browser redirect.
const defaultAuthTimeout = 5 * time.Minute

// CodeReceiver receives the authorisation code from the provider redirect.
// The loopback callback server in adapters/driving/oauth satisfies it.
type CodeReceiver interface {
	// RedirectURI is the URI registered as redirect_uri for this flow.
	RedirectURI() string
	// WaitForCode blocks until the code arrives or the timeout elapses.
	WaitForCode(timeout time.Duration) (string, error)
	// Stop releases the receiver.
	Stop() error
}

// ReceiverFactory starts a CodeReceiver that validates the given state.
type ReceiverFactory func(state string) (CodeReceiver, error)

// InteractiveOptions configures InteractiveSheets.
type InteractiveOptions struct {
	// NewReceiver starts the redirect receiver. Required for a fresh authorisation.
	NewReceiver ReceiverFactory
	// OpenURL opens the authorisation URL, typically in a browser. Optional.
	OpenURL func(url string) error
	// Prompt receives the authorisation URL as text. Optional.
	Prompt io.Writer
	// Timeout bounds the wait for the redirect. Zero uses five minutes.
	Timeout time.Duration
}

// InteractiveSheets returns a Sheets v4 service authorised through the local
// OAuth flow instead of service-account impersonation. It takes no key or
// subject: the OAuth client comes from ClientSecretPath and the user token is
// reused from the token store when present. New and refreshed tokens are
// written back to the store.
func (f *CredentialFactory) InteractiveSheets(ctx context.Context) (*sheets.Service, error) {
	logger.Section("Interactive Sheets")

	spec, err := Lookup(domain.EndpointSheets)
	if err != nil {
		return nil, err
	}

	ts, err := f.interactiveTokenSource(ctx, sheetsTokenName, spec.Scopes)
	if err != nil {
		return nil, err
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(f.apiClient(domain.EndpointSheets, ts)))
	if err != nil {
		return nil, fmt.Errorf("%w: build %s %s: %w", domain.ErrClientBuild, spec.API, spec.Version, err)
	}
	return svc, nil
}

func (f *CredentialFactory) interactiveTokenSource(
	ctx context.Context, name string, scopes []string,
) (oauth2.TokenSource, error) {
	cfg, err := f.oauthConfig(scopes)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.tokenClient)

	tok := f.cachedToken(ctx, name)
	if tok != nil && f.verify {
		ts := newPersistingTokenSource(ctx, name, f.tokens, cfg.TokenSource(ctx, tok), tok)
		_, verr := ts.Token()
		if verr == nil {
			return ts, nil
		}
		if err := f.discardRejectedToken(ctx, name, verr); err != nil {
			return nil, err
		}
		tok = nil
	}
	if tok == nil {
		tok, err = f.authorize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if f.tokens != nil {
			if err := f.tokens.Save(ctx, name, toDomainToken(tok)); err != nil {
				return nil, fmt.Errorf("save token %q: %w", name, err)
			}
			logger.Info("token %q saved", name)
		}
	}

	return newPersistingTokenSource(ctx, name, f.tokens, cfg.TokenSource(ctx, tok), tok), nil
}

// discardRejectedToken removes a cached token the provider refused to
// refresh. Errors other than a provider rejection are returned unchanged.
func (f *CredentialFactory) discardRejectedToken(ctx context.Context, name string, err error) error {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return err
	}
	logger.Warn("cached token %q rejected (%s), authorising again", name, rerr.ErrorCode)
	if f.tokens == nil {
		return nil
	}
	if err := f.tokens.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete rejected token %q: %w", name, err)
	}
	return nil
}

// SignOutSheets removes the cached interactive Sheets token. The next
// InteractiveSheets call authorises again.
func (f *CredentialFactory) SignOutSheets(ctx context.Context) error {
	if f.tokens == nil {
		return nil
	}
	if err := f.tokens.Delete(ctx, sheetsTokenName); err != nil {
		return fmt.Errorf("delete token %q: %w", sheetsTokenName, err)
	}
	logger.Info("token %q removed", sheetsTokenName)
	return nil
}

func (f *CredentialFactory) oauthConfig(scopes []string) (*oauth2.Config, error) {
	path := f.ClientSecretPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no OAuth client secret at %s", domain.ErrAuthRequired, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read client secret: %w", domain.ErrCredential, err)
	}

	cfg, err := googleoauth.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse client secret %s: %w", domain.ErrCredential, path, err)
	}
	return cfg, nil
}

// cachedToken returns a usable stored token, or nil when a fresh
// authorisation is needed.
func (f *CredentialFactory) cachedToken(ctx context.Context, name string) *oauth2.Token {
	if f.tokens == nil {
		return nil
	}
	stored, err := f.tokens.Load(ctx, name)
	if err != nil {
		logger.Warn("load cached token %q: %v", name, err)
		return nil
	}
	if stored == nil {
		return nil
	}
	if stored.IsExpired() && !stored.CanRefresh() {
		logger.Debug("cached token %q expired without refresh token", name)
		return nil
	}
	logger.Debug("reusing cached token %q", name)
	return toOAuth2Token(stored)
}

// authorize runs the authorisation-code flow with PKCE against a local receiver.
func (f *CredentialFactory) authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	if f.interactive.NewReceiver == nil {
		return nil, fmt.Errorf("%w: no authorisation code receiver configured", domain.ErrAuthRequired)
	}

	state := oauth2.GenerateVerifier()
	verifier := oauth2.GenerateVerifier()

	receiver, err := f.interactive.NewReceiver(state)
	if err != nil {
		return nil, fmt.Errorf("start callback receiver: %w", err)
	}
	defer func() {
		if err := receiver.Stop(); err != nil {
			logger.Warn("stop callback receiver: %v", err)
		}
	}()

	cfg.RedirectURL = receiver.RedirectURI()
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	f.presentURL(authURL)

	timeout := f.interactive.Timeout
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}
	code, err := receiver.WaitForCode(timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: authorisation: %w", domain.ErrCredential, err)
	}

	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %w", domain.ErrCredential, err)
	}
	return tok, nil
}

func (f *CredentialFactory) presentURL(authURL string) {
	if f.interactive.Prompt != nil {
		fmt.Fprintf(f.interactive.Prompt, "Open this URL to authorise access:\n\n  %s\n\n", authURL)
	}
	if f.interactive.OpenURL != nil {
		if err := f.interactive.OpenURL(authURL); err != nil {
			logger.Warn("open browser: %v", err)
		}
	}
}
