package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	request "chequeprint/pkg/platform/middleware/request"
	"chequeprint/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	OperatorID  string
	Permissions []string
	JTI         string
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireOperator authenticates the operator from a bearer token and stores
// the operator id and permissions in the request context.
//
// When devOperatorID is set, requests without an Authorization header run as
// that operator with no permissions. It must stay empty in production.
func RequireOperator(validator JWTValidator, devOperatorID string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if token, ok := strings.CutPrefix(authHeader, bearerPrefix); ok && validator != nil {
				claims, err := validator.ValidateToken(token)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", request.GetRequestID(ctx),
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
					return
				}
				perms := make([]requestcontext.Permission, len(claims.Permissions))
				for i, p := range claims.Permissions {
					perms[i] = requestcontext.Permission(p)
				}
				ctx = requestcontext.WithOperator(ctx, claims.OperatorID, perms...)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if authHeader == "" && devOperatorID != "" {
				ctx = requestcontext.WithOperator(ctx, devOperatorID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			logger.WarnContext(ctx, "unauthorized access - missing token",
				"request_id", request.GetRequestID(ctx),
			)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
		})
	}
}
