// Package services contains server-side business logic. This file implements
// CalendarTokenService, the lifecycle manager for external calendar grants:
// begin/complete authorization, serve a valid access token with transparent
// refresh, and revoke.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mberzonis/carelink/internal/common"
	"github.com/mberzonis/carelink/internal/cryptox"
	"github.com/mberzonis/carelink/internal/dbx"
	"github.com/mberzonis/carelink/internal/logging"
	"github.com/mberzonis/carelink/internal/server/calendar"
	"github.com/mberzonis/carelink/internal/server/models"
	"github.com/mberzonis/carelink/internal/server/repositories/repomanager"
	"golang.org/x/sync/singleflight"
)

// AuthorizationRequest carries the consent URL the caller must present to
// the user (popup or redirect). Building it has no side effect on stored
// state; the manager only sees the resulting code, or nothing.
type AuthorizationRequest struct {
	URL string
}

// CalendarTokenService owns the calendar grant for each portal user. The
// durable store and the in-process cache are both replicas of the state this
// service holds: every mutation is written through, and the cache is always
// overwritten, never merged.
type CalendarTokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	provider    calendar.Provider
	sealer      *cryptox.Sealer
	logger      logging.Logger

	// now is a seam for tests.
	now func() time.Time

	mu    sync.Mutex
	cache map[string]*models.TokenRecord

	// flight collapses concurrent refreshes for the same owner into one
	// provider call.
	flight singleflight.Group
}

// NewCalendarTokenService constructs the service from its collaborators.
func NewCalendarTokenService(db *sql.DB, m repomanager.RepositoryManager, provider calendar.Provider, sealer *cryptox.Sealer, logger logging.Logger) *CalendarTokenService {
	return &CalendarTokenService{
		db:          db,
		repomanager: m,
		provider:    provider,
		sealer:      sealer,
		logger:      logger.With("module", "calendar_tokens"),
		now:         time.Now,
		cache:       make(map[string]*models.TokenRecord),
	}
}

// BeginAuthorization builds the provider consent URL for the owner. The
// state value binds the eventual callback to the owner and is produced and
// verified by the HTTP layer.
func (s *CalendarTokenService) BeginAuthorization(ctx context.Context, owner, state string) (*AuthorizationRequest, error) {
	u, err := s.provider.AuthURL(state)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "authorization started", "owner", owner)
	return &AuthorizationRequest{URL: u}, nil
}

// CompleteAuthorization exchanges a single-use authorization code for a
// token pair and replaces any prior record for the owner. The expiry is
// computed once here, from the TTL the provider declared at issuance.
// When the provider omits a refresh token, one retained from an earlier
// authorization is carried forward so the grant stays refreshable.
func (s *CalendarTokenService) CompleteAuthorization(ctx context.Context, owner, code string) (*models.TokenRecord, error) {
	grant, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	refreshToken := grant.RefreshToken
	if refreshToken == "" {
		if prior, err := s.lookup(ctx, owner); err == nil && prior != nil {
			refreshToken = prior.RefreshToken
		}
	}

	rec := &models.TokenRecord{
		Owner:        owner,
		Provider:     s.provider.Name(),
		AccessToken:  grant.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().Add(grant.ExpiresIn),
	}

	// Overwrite, never duplicate: the old record (if any) and the new one
	// swap inside a single transaction.
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.TokenRecords(tx)
		if err := repo.Delete(ctx, owner, rec.Provider); err != nil {
			return err
		}
		return repo.Put(ctx, s.sealed(rec))
	}); err != nil {
		return nil, fmt.Errorf("storing token record: %w", err)
	}

	s.cacheSet(rec)
	s.logger.Info(ctx, "calendar connected", "owner", owner)
	return rec.Clone(), nil
}

// GetValidAccessToken returns a currently valid access token for the owner,
// refreshing transparently when expired. An empty token with a nil error is
// the normal "not connected" state, not a failure: the caller should start
// a new authorization. A non-nil error is always transient
// (common.ErrRefreshFailed wrapped) and safe to retry.
func (s *CalendarTokenService) GetValidAccessToken(ctx context.Context, owner string) (string, error) {
	rec, err := s.lookup(ctx, owner)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}

	if !rec.Expired(s.now()) {
		return rec.AccessToken, nil
	}

	if rec.RefreshToken == "" {
		// Expired with nothing to refresh from: the grant is dead, only
		// re-authorization recovers it.
		s.purge(ctx, owner)
		return "", nil
	}

	token, err, _ := s.flight.Do(owner, func() (any, error) {
		return s.refresh(ctx, owner)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// refresh performs one refresh exchange for the owner. Runs inside the
// singleflight group; late joiners see the first caller's result.
func (s *CalendarTokenService) refresh(ctx context.Context, owner string) (string, error) {
	// Re-check: a concurrent flight may have rotated the token already.
	rec, err := s.lookup(ctx, owner)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}
	if !rec.Expired(s.now()) {
		return rec.AccessToken, nil
	}

	grant, err := s.provider.Refresh(ctx, rec.RefreshToken)
	if errors.Is(err, common.ErrGrantRevoked) {
		// Terminal: never hand out the stale token, and make the state
		// observable as "not connected" everywhere.
		s.logger.Warn(ctx, "refresh token rejected by provider, clearing grant", "owner", owner)
		s.purge(ctx, owner)
		return "", nil
	}
	if err != nil {
		return "", err
	}

	rec.AccessToken = grant.AccessToken
	rec.ExpiresAt = s.now().Add(grant.ExpiresIn)
	if grant.RefreshToken != "" {
		rec.RefreshToken = grant.RefreshToken
	}

	repo := s.repomanager.TokenRecords(s.db)
	if err := repo.Put(ctx, s.sealed(rec)); err != nil {
		return "", fmt.Errorf("storing rotated token: %w", err)
	}
	s.cacheSet(rec)

	s.logger.Debug(ctx, "access token rotated", "owner", owner)
	return rec.AccessToken, nil
}

// Revoke notifies the provider (best-effort) and unconditionally clears the
// local and durable record. Revoking an absent grant is a no-op success.
func (s *CalendarTokenService) Revoke(ctx context.Context, owner string) error {
	rec, err := s.lookup(ctx, owner)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	if err := s.provider.Revoke(ctx, rec.AccessToken); err != nil {
		// Local state must not keep a dead grant alive; clear it anyway.
		s.logger.Warn(ctx, "provider-side revoke failed, clearing local state anyway",
			"owner", owner, "error", err.Error())
	}

	if err := s.purge(ctx, owner); err != nil {
		return err
	}
	s.logger.Info(ctx, "calendar disconnected", "owner", owner)
	return nil
}

// lookup returns the owner's record from the cache, falling back to the
// durable store on miss. (nil, nil) means no grant is held.
func (s *CalendarTokenService) lookup(ctx context.Context, owner string) (*models.TokenRecord, error) {
	s.mu.Lock()
	if rec, ok := s.cache[owner]; ok {
		s.mu.Unlock()
		return rec.Clone(), nil
	}
	s.mu.Unlock()

	repo := s.repomanager.TokenRecords(s.db)
	rec, err := repo.Get(ctx, owner, s.provider.Name())
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading token record: %w", err)
	}

	if rec.RefreshToken != "" {
		plain, err := s.sealer.Open(rec.RefreshToken)
		if err != nil {
			// Unreadable sealed token (key rotation without re-auth).
			// Treat the refresh token as absent rather than failing reads.
			s.logger.Warn(ctx, "stored refresh token unreadable, dropping it", "owner", owner)
			rec.RefreshToken = ""
		} else {
			rec.RefreshToken = plain
		}
	}

	s.cacheSet(rec)
	return rec.Clone(), nil
}

// purge removes the record from the durable store and the cache.
func (s *CalendarTokenService) purge(ctx context.Context, owner string) error {
	repo := s.repomanager.TokenRecords(s.db)
	if err := repo.Delete(ctx, owner, s.provider.Name()); err != nil {
		return fmt.Errorf("deleting token record: %w", err)
	}
	s.mu.Lock()
	delete(s.cache, owner)
	s.mu.Unlock()
	return nil
}

// cacheSet overwrites the cached record for the owner.
func (s *CalendarTokenService) cacheSet(rec *models.TokenRecord) {
	s.mu.Lock()
	s.cache[rec.Owner] = rec.Clone()
	s.mu.Unlock()
}

// sealed returns a copy with the refresh token sealed for storage.
func (s *CalendarTokenService) sealed(rec *models.TokenRecord) *models.TokenRecord {
	c := rec.Clone()
	if c.RefreshToken != "" {
		c.RefreshToken = s.sealer.Seal(c.RefreshToken)
	}
	return c
}
