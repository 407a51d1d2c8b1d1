package flow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/identity"
)

// DefaultTokenTTL is the lifetime of a magic-link token.
const DefaultTokenTTL = 24 * time.Hour

// MagicLinkStrategy implements passwordless login: Initiate issues a
// single-use token for an email address, Authenticate consumes it and
// upserts the account. Issuing a new token invalidates any outstanding one
// for the same address, so at most one live token exists per recipient.
type MagicLinkStrategy struct {
	tokens  domain.TokenStore
	users   domain.UserStore
	ttl     time.Duration
	limiter RateLimiter
	limit   int
	window  time.Duration
}

func NewMagicLinkStrategy(tokens domain.TokenStore, users domain.UserStore) *MagicLinkStrategy {
	return &MagicLinkStrategy{
		tokens: tokens,
		users:  users,
		ttl:    DefaultTokenTTL,
	}
}

func (s *MagicLinkStrategy) ID() string { return "magic_link" }

// SetTTL overrides the token lifetime.
func (s *MagicLinkStrategy) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// SetRateLimiter throttles issuance per recipient. No limiter is configured
// by default.
func (s *MagicLinkStrategy) SetRateLimiter(rl RateLimiter, limit int, window time.Duration) {
	s.limiter = rl
	s.limit = limit
	s.window = window
}

// Initiate deletes any outstanding token for the email and persists a fresh
// one. The returned *domain.AuthToken is handed to the caller for
// out-of-band delivery; the previous token is unusable from this point even
// if it had not expired.
func (s *MagicLinkStrategy) Initiate(ctx context.Context, email string) (any, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("magic_link: invalid email address: %w", domain.ErrValidation)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "magic_link:"+email, s.limit, s.window)
		if err != nil {
			return nil, domain.NewStoreError("rate limit", err)
		}
		if !allowed {
			return nil, fmt.Errorf("magic_link: issuance throttled for %s: %w", email, domain.ErrRateLimited)
		}
	}

	value, err := newTokenValue()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	token := &domain.AuthToken{
		Email:     email,
		Token:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.ReplaceToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Authenticate consumes the token and resolves the account. A wrong value, a
// wrong token/email pairing, and an elapsed TTL all fail with the same
// ErrInvalidOrExpiredToken; the caller learns nothing about which it was.
// Consumption is atomic, so a replayed token fails even under concurrency.
func (s *MagicLinkStrategy) Authenticate(ctx context.Context, email, token string) (*identity.Upsert, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || token == "" {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	if err := s.tokens.ConsumeToken(ctx, token, email, time.Now()); err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpiredToken) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	return s.users.UpsertUserByEmail(ctx, email)
}

// newTokenValue returns 128 bits of hex-encoded randomness.
func newTokenValue() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("magic_link: generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
