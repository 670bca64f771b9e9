package utils

import (
	"context"

	"github.com/vaughan-dsouza/expensely/internal/models"
)

// context key
type ctxKey string

const (
	CtxUserIDKey ctxKey = "user_id"
	CtxRoleKey   ctxKey = "role"
)

// WithIdentity binds the authenticated caller to ctx.
func WithIdentity(ctx context.Context, userID string, role models.Role) context.Context {
	ctx = context.WithValue(ctx, CtxUserIDKey, userID)
	return context.WithValue(ctx, CtxRoleKey, role)
}

// UserIDFromContext reports false when no authenticated user is bound.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxUserIDKey).(string)
	return id, ok && id != ""
}

func RoleFromContext(ctx context.Context) models.Role {
	role, _ := ctx.Value(CtxRoleKey).(models.Role)
	return role
}
