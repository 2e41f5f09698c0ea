package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// Principal is the authenticated actor extracted from the request context.
type Principal struct {
	UserID uuid.UUID
	Role   enums.Role
}

// PrincipalFromContext parses the seeded identity. Handlers behind the
// auth middleware can rely on it being present and well formed.
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	role, err := enums.ParseRole(RoleFromContext(ctx))
	if err != nil {
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing role")
	}
	return Principal{UserID: userID, Role: role}, nil
}
