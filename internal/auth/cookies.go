package auth

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "qf_access"
	RefreshCookieName = "qf_refresh"
)

type CookieConfig struct {
	Domain string
	Secure bool
}

// SetAuthCookies writes the token pair as HttpOnly site-wide cookies. The
// TTLs become cookie lifetimes so the browser drops them in step with
// token expiry.
func SetAuthCookies(w http.ResponseWriter, cfg CookieConfig, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	writeAuthCookie(w, cfg, AccessCookieName, accessToken, int(accessTTL.Seconds()))
	writeAuthCookie(w, cfg, RefreshCookieName, refreshToken, int(refreshTTL.Seconds()))
}

// ClearAuthCookies expires both auth cookies immediately.
func ClearAuthCookies(w http.ResponseWriter, cfg CookieConfig) {
	writeAuthCookie(w, cfg, AccessCookieName, "", -1)
	writeAuthCookie(w, cfg, RefreshCookieName, "", -1)
}

func writeAuthCookie(w http.ResponseWriter, cfg CookieConfig, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
