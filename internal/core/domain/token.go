package domain

import "time"

// OAuthToken is a cached user token from the interactive authorisation flow.
// Service-account credentials are never stored; they are re-issued per call.
type OAuthToken struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the access token has expired.
// A zero expiry never expires.
func (t *OAuthToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// CanRefresh returns true if a refresh token is available.
func (t *OAuthToken) CanRefresh() bool {
	return t.RefreshToken != ""
}
