package middleware

import (
	"context"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/jwt"
)

type authResultContextKey struct{}
type claimsContextKey struct{}

// ErrorHandler writes a rejection response for a gated request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// AuthResultFromContext returns the result attached by [Guard].
func AuthResultFromContext(ctx context.Context) (*goSession.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*goSession.AuthResult)
	return res, ok
}

// UserFromContext returns the user resolved by [Guard].
func UserFromContext(ctx context.Context) (goSession.User, bool) {
	res, ok := AuthResultFromContext(ctx)
	if !ok || res == nil {
		return goSession.User{}, false
	}
	return res.User, true
}

// ClaimsFromContext returns the access claims attached by [RequireAccess] or [Guard].
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	if claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims); ok {
		return claims, true
	}
	if res, ok := AuthResultFromContext(ctx); ok && res != nil {
		return res.Claims, res.Claims != nil
	}
	return nil, false
}

// DefaultErrorHandler responds with [StatusFor] and [Message] as plain text.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	http.Error(w, Message(err), StatusFor(err))
}

// Guard describes the guard operation and its observable behavior.
//
// Guard extracts both session cookies and runs [goSession.Engine.Authenticate].
// Allowed requests get the renewed access cookie (when one was minted) and
// the [goSession.AuthResult] in their context. Rejected requests never reach
// next; onError writes the response (nil uses [DefaultErrorHandler]).
func Guard(engine *goSession.Engine, onError ErrorHandler) func(http.Handler) http.Handler {
	if onError == nil {
		onError = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				onError(w, r, goSession.ErrEngineNotReady)
				return
			}

			cookies := engine.CookieConfig()
			access, refresh, err := ExtractTokens(r, cookies)
			if err != nil {
				onError(w, r, err)
				return
			}

			res, err := engine.Authenticate(r.Context(), access, refresh)
			if err != nil {
				onError(w, r, err)
				return
			}

			if res.AccessToken != "" {
				SetAccessCookie(w, cookies, res.AccessToken)
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
