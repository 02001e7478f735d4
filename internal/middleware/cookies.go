package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dareyes/restaurant-management/internal/config"
)

// RefreshCookieName is the httpOnly cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

func refreshCookie(cfg config.Config, value string, expires time.Time) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if cfg.IsProd() {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.IsProd(),
		SameSite: sameSite,
	}
}

// SetRefreshCookie attaches the refresh token cookie with the contract
// expiry/flags: httpOnly always, Secure+SameSite=None in production,
// SameSite=Lax in development.
func SetRefreshCookie(c echo.Context, cfg config.Config, token string, expires time.Time) {
	c.SetCookie(refreshCookie(cfg, token, expires))
}

// ClearRefreshCookie expires the refresh token cookie so the client cannot
// retry a token that just failed.
func ClearRefreshCookie(c echo.Context, cfg config.Config) {
	c.SetCookie(refreshCookie(cfg, "", time.Unix(0, 0)))
}

// ReadRefreshCookie returns the refresh token from the request cookie jar.
func ReadRefreshCookie(c echo.Context) (string, bool) {
	ck, err := c.Cookie(RefreshCookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
