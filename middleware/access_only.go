package middleware

import (
	"context"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// RequireAccess returns middleware that accepts only a valid access cookie.
// It has no refresh fallback and performs no store or user lookup, so it
// suits cheap read-only routes. The verified claims are placed in the context.
func RequireAccess(engine *goSession.Engine, onError ErrorHandler) func(http.Handler) http.Handler {
	if onError == nil {
		onError = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				onError(w, r, goSession.ErrEngineNotReady)
				return
			}
			if !hasCookieHeader(r.Header) {
				onError(w, r, goSession.ErrNoCookies)
				return
			}

			token, err := cookieValue(r, engine.CookieConfig().AccessName)
			if err != nil {
				onError(w, r, err)
				return
			}

			claims, err := engine.VerifyAccess(r.Context(), token)
			if err != nil {
				onError(w, r, goSession.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
