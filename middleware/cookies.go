package middleware

import (
	"net/http"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

// SetSessionCookies writes both session cookies. They carry no Max-Age, so
// browsers keep them for the browsing session only.
func SetSessionCookies(w http.ResponseWriter, cfg goSession.CookieConfig, pair goSession.TokenPair) {
	http.SetCookie(w, sessionCookie(cfg, cfg.AccessName, pair.AccessToken))
	http.SetCookie(w, sessionCookie(cfg, cfg.RefreshName, pair.RefreshToken))
}

// SetAccessCookie writes a renewed access cookie.
func SetAccessCookie(w http.ResponseWriter, cfg goSession.CookieConfig, token string) {
	http.SetCookie(w, sessionCookie(cfg, cfg.AccessName, token))
}

// ClearSessionCookies overwrites both session cookies with empty, immediately
// expiring values.
func ClearSessionCookies(w http.ResponseWriter, cfg goSession.CookieConfig) {
	for _, name := range []string{cfg.AccessName, cfg.RefreshName} {
		c := sessionCookie(cfg, name, "")
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func sessionCookie(cfg goSession.CookieConfig, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: cfg.HTTPOnly,
		SameSite: cfg.SameSite,
	}
}
