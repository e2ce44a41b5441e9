package auth

import (
	"net/http"
	"time"

	"github.com/selormtech/storefront-backend/pkg/config"
)

const (
	// SessionCookieName holds the locally-minted claims token.
	SessionCookieName = "session"
	// IdentityCookieName holds the delegated provider's opaque token.
	IdentityCookieName = "sf_identity"
)

// SetSessionCookie writes the claims-token cookie.
func SetSessionCookie(w http.ResponseWriter, cfg config.CookieConfig, token string, ttl time.Duration) {
	http.SetCookie(w, sessionCookie(cfg, SessionCookieName, token, ttl))
}

// SetIdentityCookie writes the delegated identity cookie. The gate calls
// this whenever the provider rotates the token mid-request.
func SetIdentityCookie(w http.ResponseWriter, cfg config.CookieConfig, token string, ttl time.Duration) {
	http.SetCookie(w, sessionCookie(cfg, IdentityCookieName, token, ttl))
}

// ClearSessionCookies expires both cookies on logout.
func ClearSessionCookies(w http.ResponseWriter, cfg config.CookieConfig) {
	http.SetCookie(w, sessionCookie(cfg, SessionCookieName, "", -time.Hour))
	http.SetCookie(w, sessionCookie(cfg, IdentityCookieName, "", -time.Hour))
}

func sessionCookie(cfg config.CookieConfig, name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
		c.Expires = time.Now().Add(ttl)
	} else {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	}
	return c
}
