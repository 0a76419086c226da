package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func recordCookies(t *testing.T, handler gin.HandlerFunc) map[string]*http.Cookie {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	handler(c)

	out := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func TestSetAuthCookies(t *testing.T) {
	opts := CookieOptions{
		Secure:     true,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	cookies := recordCookies(t, func(c *gin.Context) {
		SetAuthCookies(c, "acc", "ref", opts)
	})

	access, ok := cookies[AccessTokenCookie]
	if !ok {
		t.Fatalf("access cookie not set")
	}
	if access.Value != "acc" || access.MaxAge != 900 {
		t.Fatalf("access cookie = value %q maxAge %d, want acc/900", access.Value, access.MaxAge)
	}
	if !access.HttpOnly || !access.Secure || access.SameSite != http.SameSiteStrictMode {
		t.Fatalf("access cookie transport attributes wrong: %+v", access)
	}

	refresh, ok := cookies[RefreshTokenCookie]
	if !ok {
		t.Fatalf("refresh cookie not set")
	}
	if refresh.Value != "ref" || refresh.MaxAge != 604800 {
		t.Fatalf("refresh cookie = value %q maxAge %d, want ref/604800", refresh.Value, refresh.MaxAge)
	}
}

func TestSecureFlagOffOutsideProduction(t *testing.T) {
	opts := CookieOptions{
		Secure:     false,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	cookies := recordCookies(t, func(c *gin.Context) {
		SetAuthCookies(c, "acc", "ref", opts)
	})

	if cookies[AccessTokenCookie].Secure {
		t.Fatalf("secure flag should be off outside production")
	}
}

func TestClearAuthCookies(t *testing.T) {
	cookies := recordCookies(t, func(c *gin.Context) {
		ClearAuthCookies(c, CookieOptions{})
	})

	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		ck, ok := cookies[name]
		if !ok {
			t.Fatalf("%s not cleared", name)
		}
		if ck.Value != "" || ck.MaxAge != -1 {
			t.Fatalf("%s = value %q maxAge %d, want empty/-1", name, ck.Value, ck.MaxAge)
		}
	}
}
