package httpapi

import (
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/middleware"
)

type loginRequest struct {
	WalletAddress string `json:"wallet_address"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", "Invalid request body.")
		return
	}

	res, err := h.engine.Login(r.Context(), req.WalletAddress)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.SetSessionCookies(w, h.engine.CookieConfig(), res.Tokens)
	h.log.Info("auth.login.ok", "user_id", res.User.ID)
	writeJSON(w, r, http.StatusOK, res.User)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookies := h.engine.CookieConfig()

	token, err := middleware.ExtractRefreshToken(r, cookies)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.engine.Logout(r.Context(), token); err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.ClearSessionCookies(w, cookies)
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.ExpiresAt == nil {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "Token expired")
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time.UTC()})
}
