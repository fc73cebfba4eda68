// Package actorctx carries who is calling, and under which request, on a context so
// services and the logger can read it without knowing about gin.
package actorctx

import "context"

type (
	userIDKey    struct{}
	requestIDKey struct{}
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	return stringValue(ctx, userIDKey{})
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey{})
}

func stringValue(ctx context.Context, key any) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}
