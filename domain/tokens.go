package domain

import (
	"context"
	"time"
)

// AuthToken is a single-use, expiring magic-link token bound to a recipient
// email address.
type AuthToken struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenStore persists magic-link tokens. Implementations must uphold the
// single-live-token invariant: at most one unconsumed, unexpired token per
// email at any time.
type TokenStore interface {
	// ReplaceToken deletes every outstanding token for token.Email and
	// inserts the new one, as a single transactional unit.
	ReplaceToken(ctx context.Context, token *AuthToken) error

	// ConsumeToken atomically deletes the row matching token, email and
	// expires_at > now. Returns ErrInvalidOrExpiredToken when no such row
	// exists. Two concurrent calls with the same token must yield exactly
	// one success.
	ConsumeToken(ctx context.Context, token, email string, now time.Time) error

	// DeleteExpiredTokens removes rows whose expiry has elapsed. Purely a
	// maintenance sweep; verification already filters on expiry.
	DeleteExpiredTokens(ctx context.Context, now time.Time) error
}
