package auth

import (
	"context"

	"github.com/debemdeboas/editorial/internal/model"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	ContextKeyUserID  ContextKey = "userID"
	ContextKeyService ContextKey = "service"
)

func ContextWithUserID(ctx context.Context, userID model.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) (model.UserID, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(model.UserID)
	return userID, ok && userID != ""
}

// ContextWithService marks the request as made by the editing service of event.
// The service acts as the system user.
func ContextWithService(ctx context.Context, event model.EventID) context.Context {
	ctx = context.WithValue(ctx, ContextKeyService, event)
	return ContextWithUserID(ctx, model.SystemUserID)
}

func ServiceFromContext(ctx context.Context) (model.EventID, bool) {
	event, ok := ctx.Value(ContextKeyService).(model.EventID)
	return event, ok
}
