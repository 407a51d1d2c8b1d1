package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/entries"
	"github.com/pongsapak26/Bullet-Journal/flow"
	"github.com/pongsapak26/Bullet-Journal/identity"
	"github.com/pongsapak26/Bullet-Journal/logger"
	"github.com/pongsapak26/Bullet-Journal/session"
)

type failingTokenStore struct{}

func (failingTokenStore) ReplaceToken(ctx context.Context, token *domain.AuthToken) error {
	return domain.NewStoreError("replace token", errors.New("connection reset"))
}

func (failingTokenStore) ConsumeToken(ctx context.Context, token, email string, now time.Time) error {
	return domain.NewStoreError("consume token", errors.New("connection reset"))
}

func (failingTokenStore) DeleteExpiredTokens(ctx context.Context, now time.Time) error {
	return nil
}

type staticUserStore struct{}

func (staticUserStore) UpsertUserByEmail(ctx context.Context, email string) (*identity.Upsert, error) {
	return &identity.Upsert{User: &identity.User{ID: "u1", Email: email}}, nil
}

func (staticUserStore) GetUser(ctx context.Context, id string) (*identity.User, error) {
	return &identity.User{ID: id}, nil
}

// A storage failure during verification still lands the browser on the
// generic error page, but the underlying cause is logged.
func TestVerifyLogsStorageFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = prev }()

	loginManager := flow.NewManager()
	loginManager.RegisterStrategy(flow.NewMagicLinkStrategy(failingTokenStore{}, staticUserStore{}))
	sessions := session.NewManager(session.Base64Codec{}, time.Hour, false)
	h := NewHandler(loginManager, sessions, entries.NewService(nil), &captureSender{}, "http://localhost:8080")

	e := echo.New()
	h.RegisterRoutes(e)

	rec := get(e, "/auth/verify?token=tok&email=a@x.com")
	if rec.Code != http.StatusFound {
		t.Fatalf("verify returned %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/?error=auth_failed" {
		t.Errorf("failed verify redirected to %q", loc)
	}
	if logs.FilterMessage("token verification storage failure").Len() != 1 {
		t.Errorf("expected one storage failure log entry, got %d total", logs.Len())
	}
}
