// Package session issues, reads, and revokes the session cookie. The
// credential is self-contained: there is no server-side session row, so
// logout clears the carrier and nothing else. A copied still-valid cookie
// value stays decodable until its max-age elapses; that is an accepted
// property of this design, not a bug.
package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pongsapak26/Bullet-Journal/identity"
)

// CookieName is the name of the session carrier cookie.
const CookieName = "session"

// DefaultMaxAge keeps users logged in until explicit logout.
const DefaultMaxAge = 365 * 24 * time.Hour

// Manager writes and reads the session cookie through echo's cookie API.
type Manager struct {
	codec  Codec
	maxAge time.Duration
	secure bool
}

// NewManager creates a Manager. secure should be true outside local
// development so the cookie is only sent over TLS.
func NewManager(codec Codec, maxAge time.Duration, secure bool) *Manager {
	if codec == nil {
		codec = Base64Codec{}
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Manager{codec: codec, maxAge: maxAge, secure: secure}
}

// Issue encodes a credential for user and sets the cookie.
func (m *Manager) Issue(c echo.Context, user *identity.User) error {
	value, err := m.codec.Encode(&Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the decoded credential, or nil when the cookie is absent or
// fails to decode. It never returns an error: a broken carrier is simply
// "no session".
func (m *Manager) Read(c echo.Context) *Claims {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return nil
	}
	return claims
}

// Present reports whether a session cookie exists at all, without decoding
// it. The route gate uses this cheap check; API handlers use Read.
func (m *Manager) Present(c echo.Context) bool {
	cookie, err := c.Cookie(CookieName)
	return err == nil && cookie.Value != ""
}

// Clear expires the cookie. There is no server-side state to invalidate.
func (m *Manager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
