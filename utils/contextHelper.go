package utils

import (
	"context"

	"github.com/mmdatafocus/invest_backend/appctx"
)

var (
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

// RequireUserId returns the authenticated user id or ErrorUnauthorized.
func RequireUserId(ctx context.Context) (int, error) {
	userId, ok := GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return 0, ErrorUnauthorized
	}
	return userId, nil
}
