// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services read them. Keeping this package free of
// net/http lets services depend on it without pulling in transport code.
//
// Usage in services:
//
//	operator := requestcontext.OperatorID(ctx)
//	if requestcontext.HasPermission(ctx, requestcontext.PermissionReprint) { ... }
//	now := requestcontext.Now(ctx)
//
// Usage in tests:
//
//	ctx = requestcontext.WithOperator(ctx, "teller-7", requestcontext.PermissionReprint)
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"slices"
	"time"
)

// Permission is a capability granted to an operator by the identity provider.
type Permission string

const (
	// PermissionReprint allows re-printing leaves that already have a PRINT log entry.
	PermissionReprint Permission = "cheque:reprint"
	// PermissionCertified allows committing certified serial ranges.
	PermissionCertified Permission = "cheque:certified"
)

type (
	operatorIDKey  struct{}
	permissionsKey struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyOperatorID  = operatorIDKey{}
	ContextKeyPermissions = permissionsKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Operator
// -----------------------------------------------------------------------------

// OperatorID returns the authenticated operator, or "" when unauthenticated.
func OperatorID(ctx context.Context) string {
	if op, ok := ctx.Value(ContextKeyOperatorID).(string); ok {
		return op
	}
	return ""
}

// WithOperator injects an operator and the permissions granted to them.
func WithOperator(ctx context.Context, operatorID string, perms ...Permission) context.Context {
	ctx = context.WithValue(ctx, ContextKeyOperatorID, operatorID)
	return context.WithValue(ctx, ContextKeyPermissions, slices.Clone(perms))
}

// Permissions returns the permissions granted to the current operator.
func Permissions(ctx context.Context) []Permission {
	if perms, ok := ctx.Value(ContextKeyPermissions).([]Permission); ok {
		return perms
	}
	return nil
}

// HasPermission reports whether the current operator holds perm.
func HasPermission(ctx context.Context, perm Permission) bool {
	return slices.Contains(Permissions(ctx), perm)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
