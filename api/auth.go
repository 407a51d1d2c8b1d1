package api

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pongsapak26/Bullet-Journal/domain"
	"github.com/pongsapak26/Bullet-Journal/logger"
)

const stateCookie = "oauth_state"

// HandleLogin issues a magic-link token for the given email and hands the
// link to the delivery collaborator. The response never reveals whether the
// address was already registered.
func (h *Handler) HandleLogin(c echo.Context) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, domain.ErrValidation)
	}

	result, err := h.login.Initiate(c.Request().Context(), "magic_link", body.Email)
	if err != nil {
		return h.Error(c, err)
	}
	token, ok := result.(*domain.AuthToken)
	if !ok {
		return h.Error(c, domain.ErrValidation)
	}

	link := h.magicLink(token)
	if err := h.sender.SendMagicLink(c.Request().Context(), token.Email, link); err != nil {
		return h.Error(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Magic link sent to your email",
	})
}

func (h *Handler) magicLink(token *domain.AuthToken) string {
	q := url.Values{}
	q.Set("token", token.Token)
	q.Set("email", token.Email)
	return h.appURL + "/auth/verify?" + q.Encode()
}

// HandleVerify consumes the magic-link token, creates the session cookie and
// redirects into the app. Any verification failure lands back on the entry
// page with a generic error marker.
func (h *Handler) HandleVerify(c echo.Context) error {
	token := c.QueryParam("token")
	email := c.QueryParam("email")

	upsert, err := h.login.Authenticate(c.Request().Context(), "magic_link", email, token)
	if err != nil {
		if domain.IsStoreError(err) {
			logger.Log.Error("token verification storage failure", zap.Error(err))
		}
		return c.Redirect(http.StatusFound, "/?error=auth_failed")
	}

	if err := h.sessions.Issue(c, upsert.User); err != nil {
		return h.Error(c, err)
	}

	if upsert.Created {
		logger.Log.Info("account created on first login", zap.String("user_id", upsert.User.ID))
	}

	return c.Redirect(http.StatusFound, safeRedirect(c.QueryParam("redirect")))
}

// HandleLogout clears the carrier. There is no server-side session record to
// invalidate.
func (h *Handler) HandleLogout(c echo.Context) error {
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// HandleWhoAmI returns the decoded credential of the current session.
func (h *Handler) HandleWhoAmI(c echo.Context) error {
	claims := claimsFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"userId": claims.UserID,
		"email":  claims.Email,
	})
}

// HandleOIDCAuth sends the user to the provider's consent page, with a
// random state pinned in a short-lived cookie.
func (h *Handler) HandleOIDCAuth(c echo.Context) error {
	provider := c.Param("provider")

	state, err := newState()
	if err != nil {
		return h.Error(c, err)
	}
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	authURL, err := h.oidc.AuthURL(provider, state)
	if err != nil {
		return h.Error(c, domain.ErrValidation)
	}
	return c.Redirect(http.StatusFound, authURL)
}

// HandleOIDCCallback exchanges the provider code for an account and issues
// the same session cookie as the magic-link path.
func (h *Handler) HandleOIDCCallback(c echo.Context) error {
	provider := c.Param("provider")
	code := c.QueryParam("code")
	state := c.QueryParam("state")

	cookie, err := c.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != state {
		return c.Redirect(http.StatusFound, "/?error=auth_failed")
	}
	c.SetCookie(&http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	upsert, err := h.login.Authenticate(c.Request().Context(), "oidc", provider, code)
	if err != nil {
		if domain.IsStoreError(err) {
			logger.Log.Error("code exchange storage failure", zap.Error(err))
		}
		return c.Redirect(http.StatusFound, "/?error=auth_failed")
	}

	if err := h.sessions.Issue(c, upsert.User); err != nil {
		return h.Error(c, err)
	}
	return c.Redirect(http.StatusFound, safeRedirect(c.QueryParam("redirect")))
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
