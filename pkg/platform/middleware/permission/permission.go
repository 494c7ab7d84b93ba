package permission

import (
	"log/slog"
	"net/http"

	request "chequeprint/pkg/platform/middleware/request"
	"chequeprint/pkg/requestcontext"
)

// Require rejects requests whose operator lacks perm. It must run after the
// auth middleware.
func Require(perm requestcontext.Permission, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !requestcontext.HasPermission(ctx, perm) {
				logger.WarnContext(ctx, "operator lacks permission",
					"permission", string(perm),
					"operator_id", requestcontext.OperatorID(ctx),
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"operator lacks the required permission"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
