// Package api exposes the HTTP surface: magic-link login, OIDC callback,
// session lifecycle and the ownership-scoped entry CRUD consumed by the UI.
package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/entries"
	"github.com/pongsapak26/Bullet-Journal/flow"
	"github.com/pongsapak26/Bullet-Journal/logger"
	"github.com/pongsapak26/Bullet-Journal/session"
)

const sessionKey = "session"

// DashboardPath is where authenticated users land.
const DashboardPath = "/dashboard"

type Handler struct {
	login    *flow.Manager
	oidc     *flow.CodeExchangeStrategy
	sessions *session.Manager
	entries  *entries.Service
	sender   domain.LinkSender
	appURL   string
}

func NewHandler(login *flow.Manager, sessions *session.Manager, svc *entries.Service, sender domain.LinkSender, appURL string) *Handler {
	return &Handler{
		login:    login,
		sessions: sessions,
		entries:  svc,
		sender:   sender,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// SetOIDC wires the federated login path. Without it the OIDC routes answer
// 404.
func (h *Handler) SetOIDC(s *flow.CodeExchangeStrategy) {
	h.oidc = s
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/login", h.HandleLogin)
	e.GET("/auth/verify", h.HandleVerify)
	e.POST("/api/auth/logout", h.HandleLogout)

	if h.oidc != nil {
		e.GET("/auth/oidc/:provider", h.HandleOIDCAuth)
		e.GET("/auth/oidc/:provider/callback", h.HandleOIDCCallback)
	}

	g := e.Group("/api", h.RequireSession)
	g.GET("/me", h.HandleWhoAmI)
	g.GET("/entries", h.HandleListEntries)
	g.GET("/entries/:id", h.HandleGetEntry)
	g.POST("/entries", h.HandleCreateEntry)
	g.PUT("/entries/:id", h.HandleUpdateEntry)
	g.DELETE("/entries/:id", h.HandleDeleteEntry)
	g.POST("/entries/:id/images", h.HandleAddImages)
	g.DELETE("/images/:id", h.HandleDeleteImage)
	g.GET("/stats", h.HandleStats)
}

// RequireSession decodes the session cookie and rejects the request when it
// is absent or undecodable. The claims are stored on the echo context for
// the handler.
func (h *Handler) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := h.sessions.Read(c)
		if claims == nil {
			return h.Error(c, domain.ErrUnauthorized)
		}
		c.Set(sessionKey, claims)
		return next(c)
	}
}

// RouteGate protects page prefixes by cookie presence alone: no session
// means a redirect to the entry page carrying the original destination, and
// a logged-in visit to the entry page is forwarded to the dashboard. Full
// credential validation stays with RequireSession on the API.
func (h *Handler) RouteGate(prefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			loggedIn := h.sessions.Present(c)

			for _, p := range prefixes {
				if path == p || strings.HasPrefix(path, p+"/") {
					if !loggedIn {
						q := url.Values{}
						q.Set("redirect", path)
						return c.Redirect(http.StatusFound, "/?"+q.Encode())
					}
					return next(c)
				}
			}

			if path == "/" && loggedIn {
				return c.Redirect(http.StatusFound, DashboardPath)
			}
			return next(c)
		}
	}
}

func claimsFrom(c echo.Context) *session.Claims {
	claims, _ := c.Get(sessionKey).(*session.Claims)
	return claims
}

// Error maps the domain taxonomy onto HTTP statuses with a structured
// {error} body. Store failures are logged with their cause and surfaced as a
// generic message.
func (h *Handler) Error(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
	case errors.Is(err, domain.ErrInvalidOrExpiredToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		logger.Log.Error("request failed",
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// safeRedirect accepts only local paths, so the redirect parameter cannot be
// abused to send users off-site.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return DashboardPath
	}
	return target
}
