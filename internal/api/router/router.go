package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/wolfman30/booking-wizard/internal/http/middleware"
	"github.com/wolfman30/booking-wizard/internal/web"
	"github.com/wolfman30/booking-wizard/pkg/logging"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	WizardHandler  *web.Handler
	MetricsHandler http.Handler

	// SessionBackend is checked by /health when set (Redis session store).
	SessionBackend Pinger

	// ActionLimiter throttles wizard actions per client. Nil disables it.
	ActionLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(httpmiddleware.LimitActions(cfg.ActionLimiter))

	r.Get("/health", healthHandler(cfg.SessionBackend))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.WizardHandler != nil {
		r.Mount("/", cfg.WizardHandler.Routes())
	}

	return r
}

func healthHandler(backend Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		resp := map[string]string{"status": "ok"}
		if backend != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := backend.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				resp["status"] = "degraded"
				resp["sessions"] = err.Error()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
