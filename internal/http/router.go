// Package httpapi assembles the public router: shared middleware, health,
// metrics and the feature handlers behind operator authentication.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"chequeprint/pkg/platform/httputil"
	authmw "chequeprint/pkg/platform/middleware/auth"
	"chequeprint/pkg/platform/middleware/metadata"
	request "chequeprint/pkg/platform/middleware/request"
	"chequeprint/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by feature handlers.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger         *slog.Logger
	Validator      authmw.JWTValidator
	DevOperatorID  string
	RequestTimeout time.Duration
	Metrics        http.Handler
	Health         map[string]HealthCheck
	Handlers       []Registrar
}

func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Recovery(cfg.Logger))
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthHandler(cfg.Health))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		r.Use(authmw.RequireOperator(cfg.Validator, cfg.DevOperatorID, cfg.Logger))
		for _, h := range cfg.Handlers {
			h.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
