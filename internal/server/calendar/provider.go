// Package calendar contains the external calendar provider boundary: the
// interface the token lifecycle logic talks to, plus the Google OAuth2
// implementation. Raw HTTP and provider payloads never leave this package;
// failures are translated to the sentinel errors in internal/common.
package calendar

import (
	"context"
	"time"
)

// Grant is a token pair as returned by the provider's token endpoint.
// RefreshToken may be empty: providers omit it on repeated consent.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Provider is the OAuth2 surface of an external calendar service.
type Provider interface {
	// Name identifies the provider in stored records ("google").
	Name() string

	// AuthURL builds the user-facing consent URL carrying the given state.
	// Fails only with common.ErrMissingConfiguration.
	AuthURL(state string) (string, error)

	// Exchange trades a single-use authorization code for a Grant.
	// Failures are common.ErrExchangeFailed.
	Exchange(ctx context.Context, code string) (*Grant, error)

	// Refresh mints a new access token from a refresh token. Failures are
	// common.ErrGrantRevoked (terminal) or common.ErrRefreshFailed (transient).
	Refresh(ctx context.Context, refreshToken string) (*Grant, error)

	// Revoke asks the provider to invalidate the token. Best-effort; the
	// returned error is for logging only.
	Revoke(ctx context.Context, token string) error
}
