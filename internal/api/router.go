package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"example.com/habits/internal/auth"
)

// RouterConfig controls the middleware stack around the handlers.
type RouterConfig struct {
	AllowedOrigin string
	// Auth is nil when bearer authentication is disabled.
	Auth *auth.Config
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
	Logger  *zap.Logger
}

// NewRouter assembles the chi router for the habit API.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))
	r.Use(CORS(cfg.AllowedOrigin))
	if cfg.Auth != nil {
		r.Use(auth.NewMiddleware(*cfg.Auth, auth.PublicPaths).Wrap)
	}

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	h.RegisterRoutes(r)
	return r
}
