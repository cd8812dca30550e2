package httpapi

import (
	"net/http"

	"github.com/MrEthical07/goSession/internal/users"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createUserRequest struct {
	WalletAddress string `json:"wallet_address"`
	Username      string `json:"username"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", "Invalid request body.")
		return
	}

	u, err := users.New(req.WalletAddress, req.Username)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.log.Info("user.create.ok", "user_id", u.ID.String())
	writeJSON(w, r, http.StatusCreated, u)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUserID(w, r)
	if !ok {
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, u)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUserID(w, r)
	if !ok {
		return
	}

	caller, ok := middleware.UserFromContext(r.Context())
	if !ok || caller.ID != id.String() {
		writeError(w, r, http.StatusForbidden, "forbidden", "Cannot modify another user.")
		return
	}

	var upd users.Update
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", "Invalid request body.")
		return
	}

	current, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	next, err := upd.Apply(current)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.users.Update(r.Context(), next); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, next)
}

func (h *Handler) pathUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", "Invalid user id.")
		return uuid.Nil, false
	}
	return id, true
}
