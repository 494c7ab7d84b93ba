package testutil

import (
	"net/http"

	"chequeprint/pkg/requestcontext"
)

// WithOperator attaches an authenticated operator to the request, as the
// auth middleware would after validating a bearer token.
func WithOperator(req *http.Request, operatorID string, perms ...requestcontext.Permission) *http.Request {
	return req.WithContext(requestcontext.WithOperator(req.Context(), operatorID, perms...))
}
