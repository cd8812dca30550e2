// Package httpapi serves the goSession reference HTTP API: login, logout,
// and user routes behind the request gate.
package httpapi

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/users"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handler wires HTTP routes to the engine and the user repository.
type Handler struct {
	log        *slog.Logger
	engine     *goSession.Engine
	users      users.Repository
	metrics    http.Handler
	trustProxy bool
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(metrics http.Handler) HandlerOption {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

// WithTrustProxy makes client IP resolution honor X-Forwarded-For and X-Real-IP.
func WithTrustProxy(trust bool) HandlerOption {
	return func(h *Handler) {
		h.trustProxy = trust
	}
}

// NewHandler constructs a Handler. A nil logger uses slog.Default.
func NewHandler(log *slog.Logger, engine *goSession.Engine, repo users.Repository, opts ...HandlerOption) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("httpapi: nil engine")
	}
	if repo == nil {
		return nil, errors.New("httpapi: nil user repository")
	}
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{log: log, engine: engine, users: repo}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Routes returns the complete router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	gate := middleware.Guard(h.engine, h.respondError)
	accessOnly := middleware.RequireAccess(h.engine, h.respondError)

	r.Use(chimw.RequestID)
	r.Use(RequestLogger(h.log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestSize(maxBodyBytes))
	r.Use(h.withClientIP)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "Route not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed.")
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Get("/logout", h.handleLogout)
		r.With(accessOnly).Get("/session", h.handleSession)
	})

	r.Post("/api/user", h.handleCreateUser)
	r.With(gate).Get("/api/user/{id}", h.handleGetUser)
	r.With(gate).Put("/api/user/{id}", h.handleUpdateUser)

	r.Get("/healthz", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	return r
}

func (h *Handler) withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r, h.trustProxy); ip != "" {
			r = r.WithContext(goSession.WithClientIP(r.Context(), ip))
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return ""
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return ""
}
