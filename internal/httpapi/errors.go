package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/users"
	"github.com/MrEthical07/goSession/middleware"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, goSession.ErrNoCookies), errors.Is(err, goSession.ErrMissingToken):
		return "missing_token"
	case errors.Is(err, goSession.ErrUnauthorized), errors.Is(err, goSession.ErrInvalidToken):
		return "unauthorized"
	case errors.Is(err, goSession.ErrUserNotFound), errors.Is(err, users.ErrNotFound):
		return "not_found"
	case errors.Is(err, goSession.ErrLoginRateLimited), errors.Is(err, goSession.ErrRefreshRateLimited):
		return "rate_limited"
	case errors.Is(err, goSession.ErrInvalidIdentifier), errors.Is(err, users.ErrInvalidUser):
		return "invalid_input"
	case errors.Is(err, users.ErrAlreadyExists):
		return "conflict"
	default:
		return "server_error"
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, users.ErrInvalidUser):
		return http.StatusBadRequest
	case errors.Is(err, users.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return middleware.StatusFor(err)
	}
}

func messageFor(err error) string {
	var verr *users.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, users.ErrNotFound):
		return "User not found"
	case errors.Is(err, users.ErrAlreadyExists):
		return "Wallet address already registered."
	default:
		return middleware.Message(err)
	}
}

// respondError logs err and writes its JSON form. Causes of 5xx responses
// stay in the log.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.log.Log(r.Context(), level, "httpapi.request.fail",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"err", err,
	)
	writeError(w, r, status, errorCode(err), messageFor(err))
}
