// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them without
// pulling in net/http.
//
// The request-scoped clock (Now/WithTime) is what keeps every check within
// one request on the same timestamp, and lets tests move time without a
// clock interface.
package requestcontext

import (
	"context"
	"time"

	"eventlift/pkg/domain"
)

type (
	userIDKey      struct{}
	roleKey        struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyUserID      = userIDKey{}
	ContextKeyRole        = roleKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// UserID retrieves the authenticated user ID, or the nil UUID if unset.
func UserID(ctx context.Context) domain.UserID {
	if id, ok := ctx.Value(ContextKeyUserID).(domain.UserID); ok {
		return id
	}
	return domain.UserID{}
}

// WithUserID injects an authenticated user ID.
func WithUserID(ctx context.Context, id domain.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, id)
}

// Role retrieves the authenticated role, or "" if unset.
func Role(ctx context.Context) domain.Role {
	if r, ok := ctx.Value(ContextKeyRole).(domain.Role); ok {
		return r
	}
	return ""
}

// WithRole injects the authenticated role.
func WithRole(ctx context.Context, r domain.Role) context.Context {
	return context.WithValue(ctx, ContextKeyRole, r)
}

// RequestID retrieves the correlation ID, or "" if unset.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// Now retrieves the request-scoped time, falling back to time.Now for
// non-HTTP contexts (workers, CLI, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time. Tests use this to exercise expiry.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
