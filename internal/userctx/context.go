// Package userctx carries the authenticated subject through request contexts
// without importing auth.
package userctx

import (
	"context"

	"go.uber.org/zap"
)

type contextKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKey{}).(string)
	return userID, ok
}

// Logger tags l with the request's user_id when one is set.
func Logger(ctx context.Context, l *zap.Logger) *zap.Logger {
	if id, ok := GetUserID(ctx); ok {
		return l.With(zap.String("user_id", id))
	}
	return l
}
