package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"healthdash/internal/store"
)

// RefreshBuffer is how long before expiry a token is treated as expired
const RefreshBuffer = 60 * time.Second

// TokenSource wraps oauth2.TokenSource with persistence
// It refreshes tokens inside RefreshBuffer of expiry and calls onRefresh with each new token
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	now       func() time.Time
	mu        sync.Mutex
}

// NewTokenSource creates a new TokenSource that will refresh tokens as needed
// and call onRefresh to persist new tokens
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
		now:       time.Now,
	}
}

// NewStoredTokenSource loads the saved token and writes refreshed tokens back to the store
func NewStoredTokenSource(cfg *oauth2.Config, db *store.DB) (*TokenSource, error) {
	a, err := db.GetAuth()
	if err != nil {
		return nil, err
	}
	return NewTokenSource(cfg, TokenFromAuth(a), func(t *oauth2.Token) error {
		return db.UpdateTokens(t.AccessToken, t.RefreshToken, t.Expiry)
	}), nil
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token.Expiry.Sub(ts.now()) > RefreshBuffer {
		return ts.token, nil
	}

	// Force a refresh even if the oauth2 package still considers the token valid
	stale := *ts.token
	stale.Expiry = ts.now().Add(-time.Second)
	newToken, err := ts.config.TokenSource(context.Background(), &stale).Token()
	if err != nil {
		return nil, err
	}

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, err
		}
	}

	ts.token = newToken
	return newToken, nil
}

// Invalidate marks the current token expired so the next Token call refreshes.
// Used after the API answers 401 to a token that looked valid.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token.Expiry = ts.now().Add(-time.Second)
}

// IsExpired checks if the current token is expired or will expire within the buffer
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token.Expiry.Sub(ts.now()) <= RefreshBuffer
}

// CurrentToken returns the current token without refreshing
func (ts *TokenSource) CurrentToken() *oauth2.Token {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}
