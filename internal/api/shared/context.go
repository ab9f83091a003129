package shared

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/phrazzld/taskboard/internal/service/auth"
)

// ContextKey is the type of request context keys set by this package.
type ContextKey string

// Context keys for request-scoped values
const (
	// ClaimsContextKey holds the *auth.Claims of an authenticated caller
	ClaimsContextKey ContextKey = "claims"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID adds a fresh trace ID to the context. Trace IDs are ULIDs, so
// they sort by the time the request arrived.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, ulid.Make().String())
}

// WithTraceID adds the given trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithClaims stores the caller's verified claims in the context.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// GetClaims returns the caller's claims, or nil when the request is anonymous.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*auth.Claims)
	return claims
}
