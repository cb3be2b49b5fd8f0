// Package models holds the server-side persistence models.
package models

import "time"

// TokenRecord is the calendar grant held for one (owner, provider) pair.
// The refresh token may be empty when the provider did not grant one; such
// a record is unrecoverable once the access token expires.
type TokenRecord struct {
	Owner        string
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the access token may no longer be used.
// The comparison is strict: a token is unusable at exactly ExpiresAt.
func (r *TokenRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Clone returns a shallow copy, so cached records can be handed out without
// aliasing the cache's state.
func (r *TokenRecord) Clone() *TokenRecord {
	c := *r
	return &c
}
