package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pongsapak26/Bullet-Journal/identity"
)

func newContext(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func issuedCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	res := http.Response{Header: rec.Header()}
	for _, ck := range res.Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestManagerIssueSetsCarrierAttributes(t *testing.T) {
	m := NewManager(Base64Codec{}, time.Hour, true)
	c, rec := newContext(nil)

	if err := m.Issue(c, &identity.User{ID: "u1", Email: "a@x.com"}); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	ck := issuedCookie(t, rec)
	if !ck.HttpOnly {
		t.Error("cookie must be HTTP-only")
	}
	if ck.Path != "/" {
		t.Errorf("cookie path = %q, want /", ck.Path)
	}
	if ck.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v, want Lax", ck.SameSite)
	}
	if !ck.Secure {
		t.Error("cookie must be secure outside development")
	}
	if ck.MaxAge != 3600 {
		t.Errorf("cookie MaxAge = %d, want 3600", ck.MaxAge)
	}
}

func TestManagerReadRoundTrip(t *testing.T) {
	m := NewManager(Base64Codec{}, time.Hour, false)
	c, rec := newContext(nil)
	if err := m.Issue(c, &identity.User{ID: "u1", Email: "a@x.com"}); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	c2, _ := newContext(issuedCookie(t, rec))
	claims := m.Read(c2)
	if claims == nil {
		t.Fatal("Read returned nil for a valid cookie")
	}
	if claims.UserID != "u1" || claims.Email != "a@x.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestManagerReadNoSession(t *testing.T) {
	m := NewManager(Base64Codec{}, time.Hour, false)

	// Absent cookie.
	c, _ := newContext(nil)
	if claims := m.Read(c); claims != nil {
		t.Errorf("Read without cookie = %+v, want nil", claims)
	}

	// Corrupt cookie decodes to "no session", never an error.
	c, _ = newContext(&http.Cookie{Name: CookieName, Value: "%%corrupt%%"})
	if claims := m.Read(c); claims != nil {
		t.Errorf("Read with corrupt cookie = %+v, want nil", claims)
	}
}

func TestManagerPresent(t *testing.T) {
	m := NewManager(Base64Codec{}, time.Hour, false)

	c, _ := newContext(nil)
	if m.Present(c) {
		t.Error("Present without cookie should be false")
	}

	// Presence is a mere-existence check: even a garbage value counts.
	c, _ = newContext(&http.Cookie{Name: CookieName, Value: "garbage"})
	if !m.Present(c) {
		t.Error("Present with cookie should be true")
	}
}

func TestManagerClear(t *testing.T) {
	m := NewManager(Base64Codec{}, time.Hour, false)
	c, rec := newContext(nil)

	m.Clear(c)

	ck := issuedCookie(t, rec)
	if ck.MaxAge >= 0 {
		t.Errorf("cleared cookie MaxAge = %d, want negative", ck.MaxAge)
	}
	if ck.Value != "" {
		t.Errorf("cleared cookie value = %q, want empty", ck.Value)
	}
}
