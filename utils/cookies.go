package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieOptions controls the transport attributes of the auth cookies.
// Secure is on in production only; everything else is fixed by policy.
type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func setCookie(c *gin.Context, name, value string, maxAge int, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetAuthCookies delivers both tokens to the client.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string, opts CookieOptions) {
	setCookie(c, AccessTokenCookie, accessToken, int(opts.AccessTTL.Seconds()), opts.Secure)
	setCookie(c, RefreshTokenCookie, refreshToken, int(opts.RefreshTTL.Seconds()), opts.Secure)
}

// SetAccessCookie renews only the access token cookie.
func SetAccessCookie(c *gin.Context, accessToken string, opts CookieOptions) {
	setCookie(c, AccessTokenCookie, accessToken, int(opts.AccessTTL.Seconds()), opts.Secure)
}

// ClearAuthCookies expires both cookies on the client.
func ClearAuthCookies(c *gin.Context, opts CookieOptions) {
	setCookie(c, AccessTokenCookie, "", -1, opts.Secure)
	setCookie(c, RefreshTokenCookie, "", -1, opts.Secure)
}
