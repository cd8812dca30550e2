package httpapi

import "net/http"

type healthResponse struct {
	Status         string `json:"status"`
	StoreLatencyMS int64  `json:"store_latency_ms"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	latency, err := h.engine.Ping(r.Context())
	if err != nil {
		h.log.Warn("httpapi.health.store_down", "err", err)
		writeError(w, r, http.StatusServiceUnavailable, "store_unavailable", "Refresh store unavailable.")
		return
	}
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", StoreLatencyMS: latency.Milliseconds()})
}
