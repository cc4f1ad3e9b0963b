// Package ctxutil carries request-scoped values through context.Context.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID stores the correlation ID sent with every backend call.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the correlation ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// EnsureRequestID returns ctx unchanged when it already carries a
// correlation ID, otherwise a child context with a fresh one.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFromCtx(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}
