package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tourism-marketplace/pkg/middleware"
)

// RouterConfig carries everything the route table needs
type RouterConfig struct {
	Dashboard      *HTTPAdminDashboardController
	Tokens         middleware.TokenValidator
	RateLimiter    *middleware.RateLimiter
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter wires the middleware chain and routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware(cfg.Logger))
	r.Use(middleware.RecoveryMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.TimeoutMiddleware(cfg.RequestTimeout))
	}

	r.Get("/health", cfg.Dashboard.Health)

	r.Route("/admin", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		r.Use(middleware.JWTAuthMiddleware(cfg.Tokens))
		r.Use(middleware.RequireAdmin)

		r.Get("/dashboard/stats", cfg.Dashboard.GetDashboardStats)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteError(w, req, http.StatusNotFound, "NOT_FOUND", "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	return r
}
