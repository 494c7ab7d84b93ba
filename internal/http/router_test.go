package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmw "chequeprint/pkg/platform/middleware/auth"
	request "chequeprint/pkg/platform/middleware/request"
	"chequeprint/pkg/requestcontext"
)

type echoOperator struct{}

func (echoOperator) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, requestcontext.OperatorID(r.Context()))
	})
}

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*authmw.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &authmw.JWTClaims{OperatorID: "teller-7"}, nil
}

func newRouter(health map[string]HealthCheck) http.Handler {
	return NewRouter(Config{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Validator: staticValidator{},
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# metrics")
		}),
		Health:   health,
		Handlers: []Registrar{echoOperator{}},
	})
}

func TestRouter(t *testing.T) {
	t.Run("feature routes require an operator", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get(request.HeaderRequestID))
	})

	t.Run("bearer token identifies the operator", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "teller-7", w.Body.String())
	})

	t.Run("metrics are public", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "# metrics", w.Body.String())
	})
}

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body healthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "ok", body.Checks["postgres"])
		assert.Equal(t, "connection refused", body.Checks["redis"])
	})
}
