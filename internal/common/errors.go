// Package common defines shared constants and sentinel errors used across
// CareLink components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")

	// Calendar grant lifecycle errors.
	//
	// ErrMissingConfiguration is fatal: client credentials or the redirect
	// target are absent from config.
	// ErrExchangeFailed means the authorization code was invalid, expired,
	// or already consumed; the caller must restart authorization.
	// ErrRefreshFailed is transient (network/5xx); the stored grant is still
	// good and the same refresh may be retried later.
	// ErrGrantRevoked is terminal: the provider rejected the refresh token,
	// the stored record must be purged and the user re-authorized.
	ErrMissingConfiguration = errors.New("missing provider configuration")
	ErrExchangeFailed       = errors.New("authorization code exchange failed")
	ErrRefreshFailed        = errors.New("token refresh failed")
	ErrGrantRevoked         = errors.New("grant revoked by provider")
)
