package middleware

import (
	"errors"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, goSession.ErrNoCookies),
		errors.Is(err, goSession.ErrMissingToken),
		errors.Is(err, goSession.ErrUnauthorized),
		errors.Is(err, goSession.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, goSession.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, goSession.ErrLoginRateLimited),
		errors.Is(err, goSession.ErrRefreshRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, goSession.ErrInvalidIdentifier):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text for err. Internal failures never
// expose their cause.
func Message(err error) string {
	switch {
	case errors.Is(err, goSession.ErrNoCookies):
		return "No cookies provided"
	case errors.Is(err, goSession.ErrMissingToken):
		return "Session token missing"
	case errors.Is(err, goSession.ErrUnauthorized):
		return "Token expired"
	case errors.Is(err, goSession.ErrInvalidToken):
		return "Invalid token"
	case errors.Is(err, goSession.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, goSession.ErrLoginRateLimited),
		errors.Is(err, goSession.ErrRefreshRateLimited):
		return "Too many requests"
	case errors.Is(err, goSession.ErrInvalidIdentifier):
		return "Wallet address is invalid."
	default:
		return "Internal server error"
	}
}
