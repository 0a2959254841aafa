package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitalize-ai/hr-service-desk/internal/middleware"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
)

// RouterConfig carries the handlers and settings for the API router.
type RouterConfig struct {
	Health *HealthHandler
	Chat   *ChatHandler
	Cases  *CaseHandler
	Logger *logger.Logger

	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Health endpoints (no auth required, limited per IP)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Get("/health", cfg.Health.Health)
		r.Get("/ready", cfg.Health.Ready)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.UserRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", cfg.Chat.Chat)

		r.Route("/cases", func(r chi.Router) {
			r.Post("/", cfg.Cases.Process)
			r.Get("/", cfg.Cases.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.Cases.Get)
				r.Get("/events", cfg.Cases.Events)
			})
		})
	})

	return r
}
