package services

import (
	"adboard/providers"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TokenService produces a currently-valid access token for a
// (user, provider) pair, refreshing transparently through the
// provider's token endpoint and persisting the result before
// returning it.
type TokenService struct {
	repo       AccountRepository
	registry   RefresherRegistry
	lastSignIn LastSignInSource
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTokenService creates a new token service. lastSignIn may be nil;
// the invalid_grant fallback is then disabled.
func NewTokenService(repo AccountRepository, registry RefresherRegistry, lastSignIn LastSignInSource) *TokenService {
	return &TokenService{
		repo:       repo,
		registry:   registry,
		lastSignIn: lastSignIn,
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}
}

// GetAccessToken returns a usable access token for the user and
// provider. The store is re-read on every call; a token expiring
// strictly in the future is returned as-is with no write and no
// network call, otherwise a single refresh exchange runs and its
// result is persisted atomically before being returned.
func (ts *TokenService) GetAccessToken(ctx context.Context, userID string, p providers.Provider) (string, error) {
	unlock := ts.lock(userID, p)
	defer unlock()

	acct, err := ts.repo.GetAccount(userID, string(p))
	if err != nil {
		return "", err
	}
	if acct == nil {
		return "", fmt.Errorf("%w: %s", ErrAccountNotLinked, p)
	}
	if acct.AccessToken == "" || acct.ExpiresAt == 0 {
		return "", fmt.Errorf("%w: %s", ErrTokenIncomplete, p)
	}

	if !acct.Expired(ts.now()) {
		return acct.AccessToken, nil
	}

	refresher, err := ts.registry.ForProvider(p)
	if err != nil {
		return "", err
	}

	// Facebook has no refresh grant; the stored access token itself is
	// the exchange credential.
	exchangeToken := acct.RefreshToken
	if !p.UsesRefreshGrant() {
		exchangeToken = acct.AccessToken
	}

	creds, err := refresher.Refresh(ctx, exchangeToken)
	if err != nil {
		if token, ok := ts.recoverFromInvalidGrant(userID, p, err); ok {
			return token, nil
		}
		slog.Warn("token refresh failed",
			"user_id", userID,
			"provider", string(p),
			"error", err,
		)
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	expiresAt := ts.now().Unix() + creds.ExpiresIn

	// Providers frequently do not rotate refresh tokens; keep the
	// stored one unless a new one came back.
	refreshToken := acct.RefreshToken
	if creds.RefreshToken != "" {
		refreshToken = creds.RefreshToken
	}

	if err := ts.repo.UpdateAccountTokens(userID, string(p), creds.AccessToken, refreshToken, expiresAt); err != nil {
		return "", err
	}

	slog.Debug("access token refreshed",
		"user_id", userID,
		"provider", string(p),
		"expires_at", expiresAt,
	)

	return creds.AccessToken, nil
}

// recoverFromInvalidGrant handles the one documented refresh-failure
// recovery: when a Google-family provider rejects the refresh token
// with invalid_grant, the credentials issued at the user's most recent
// sign-in are re-persisted and served instead of surfacing the failure.
func (ts *TokenService) recoverFromInvalidGrant(userID string, p providers.Provider, refreshErr error) (string, bool) {
	var rerr *providers.RefreshError
	if !errors.As(refreshErr, &rerr) || rerr.Code != "invalid_grant" || !p.GoogleFamily() {
		return "", false
	}
	if ts.lastSignIn == nil {
		return "", false
	}

	creds, ok := ts.lastSignIn.LastCredentials(userID, string(p))
	if !ok || creds.AccessToken == "" {
		return "", false
	}

	if err := ts.repo.UpdateAccountTokens(userID, string(p), creds.AccessToken, creds.RefreshToken, creds.ExpiresAt); err != nil {
		slog.Warn("failed to restore last sign-in credentials",
			"user_id", userID,
			"provider", string(p),
			"error", err,
		)
		return "", false
	}

	slog.Info("refresh token rejected, restored last sign-in credentials",
		"user_id", userID,
		"provider", string(p),
	)

	return creds.AccessToken, true
}

// lock serializes calls per (user, provider) so two concurrent
// requests in this process do not race a duplicate refresh. Concurrent
// refreshes across processes remain possible; the store's atomic
// update keeps the record consistent either way.
func (ts *TokenService) lock(userID string, p providers.Provider) func() {
	key := userID + ":" + string(p)

	ts.mu.Lock()
	m, ok := ts.locks[key]
	if !ok {
		m = &sync.Mutex{}
		ts.locks[key] = m
	}
	ts.mu.Unlock()

	m.Lock()
	return m.Unlock
}
