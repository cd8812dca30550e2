package middleware

import (
	"errors"
	"net/http"
	"strings"

	goSession "github.com/MrEthical07/goSession"
)

// ExtractTokens reads the access and refresh tokens from the request's Cookie
// header using the names in cfg. A request without any Cookie header fails
// with [goSession.ErrNoCookies]; a missing or empty named cookie fails with
// [goSession.ErrMissingToken].
func ExtractTokens(r *http.Request, cfg goSession.CookieConfig) (access, refresh string, err error) {
	if !hasCookieHeader(r.Header) {
		return "", "", goSession.ErrNoCookies
	}

	access, err = cookieValue(r, cfg.AccessName)
	if err != nil {
		return "", "", err
	}
	refresh, err = cookieValue(r, cfg.RefreshName)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ExtractRefreshToken reads only the refresh token, for logout.
func ExtractRefreshToken(r *http.Request, cfg goSession.CookieConfig) (string, error) {
	if !hasCookieHeader(r.Header) {
		return "", goSession.ErrNoCookies
	}
	return cookieValue(r, cfg.RefreshName)
}

func hasCookieHeader(h http.Header) bool {
	for _, line := range h.Values("Cookie") {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

func cookieValue(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", goSession.ErrMissingToken
		}
		return "", err
	}
	if c.Value == "" {
		return "", goSession.ErrMissingToken
	}
	return c.Value, nil
}
