package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
)

var (
	// ErrInvalidToken matches every token that failed verification: bad
	// signature, malformed, wrong type, expired, or (for refresh tokens) revoked.
	ErrInvalidToken = jwt.ErrInvalidToken
	// ErrTokenExpired additionally matches verification failures caused only by expiry.
	ErrTokenExpired = jwt.ErrTokenExpired
	// ErrStoreUnavailable is returned when the refresh store cannot serve a request.
	ErrStoreUnavailable = session.ErrStoreUnavailable

	// ErrUnauthorized is returned by the gate when neither token verifies.
	ErrUnauthorized = errors.New("token expired or invalid")
	// ErrNoCookies is returned when a gated request carries no Cookie header.
	ErrNoCookies = errors.New("no cookies provided")
	// ErrMissingToken is returned when one of the session cookies is absent.
	ErrMissingToken = errors.New("session token missing")
	// ErrInvalidIdentifier is returned by login for a blank identifier.
	ErrInvalidIdentifier = errors.New("invalid login identifier")
	// ErrUserNotFound is returned when a verified subject has no user record.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionCreationFailed is returned when tokens cannot be minted or persisted.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrSessionInvalidationFailed is returned when logout cannot delete a record.
	ErrSessionInvalidationFailed = errors.New("session invalidation failed")
	// ErrLoginRateLimited is returned when an identifier or IP exhausted its login budget.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is returned when a refresh token exhausted its gate budget.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrEngineNotReady is returned by methods called on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
