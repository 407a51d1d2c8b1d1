// Package bulletjournal wires the default stack together: magic-link login
// backed by the GORM stores, the cookie session manager, and the
// ownership-scoped entry service.
package bulletjournal

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pongsapak26/Bullet-Journal/config"
	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/flow"
	"github.com/pongsapak26/Bullet-Journal/logger"
	"github.com/pongsapak26/Bullet-Journal/session"
)

// NewDefaultLoginManager builds a login manager with the magic-link strategy
// configured from cfg. With REDIS_ADDR set the issuance rate limiter is
// shared across processes; otherwise it is in-memory.
func NewDefaultLoginManager(store domain.Storage, cfg *config.Config) *flow.Manager {
	magic := flow.NewMagicLinkStrategy(store, store)
	magic.SetTTL(cfg.MagicLinkTTL)

	if cfg.RateLimit > 0 {
		var limiter flow.RateLimiter
		if cfg.RedisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			limiter = flow.NewRedisRateLimiter(client, "")
		} else {
			limiter = flow.NewMemoryRateLimiter()
		}
		magic.SetRateLimiter(limiter, cfg.RateLimit, cfg.RateWindow)
	}

	m := flow.NewManager()
	m.RegisterStrategy(magic)
	return m
}

// NewDefaultSessionManager builds the session manager with the codec named
// in cfg: "base64" (default) or "jwt", which requires SESSION_SECRET.
func NewDefaultSessionManager(cfg *config.Config) (*session.Manager, error) {
	var codec session.Codec
	switch cfg.SessionCodec {
	case "", "base64":
		codec = session.Base64Codec{}
	case "jwt":
		if cfg.SessionSecret == "" {
			return nil, fmt.Errorf("session codec jwt requires SESSION_SECRET")
		}
		codec = session.NewJWTCodec(cfg.SessionSecret, cfg.SessionMaxAge)
	default:
		return nil, fmt.Errorf("unknown session codec %q", cfg.SessionCodec)
	}
	return session.NewManager(codec, cfg.SessionMaxAge, cfg.Production()), nil
}

// NewDefaultCodeExchange builds the federated login strategy, or nil when no
// providers are configured.
func NewDefaultCodeExchange(ctx context.Context, store domain.Storage, cfg *config.Config) (*flow.CodeExchangeStrategy, error) {
	if len(cfg.OIDCProviders) == 0 {
		return nil, nil
	}
	return flow.NewCodeExchangeStrategy(ctx, store, cfg.OIDCProviders)
}

// LogSender is the development LinkSender: it logs the magic link instead of
// emailing it. Real delivery is an external collaborator.
type LogSender struct{}

func (LogSender) SendMagicLink(ctx context.Context, email, link string) error {
	logger.Log.Info("magic link issued",
		zap.String("email", email),
		zap.String("link", link),
	)
	return nil
}
