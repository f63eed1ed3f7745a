package auth

import (
	"context"

	"github.com/hugscape/storefront/internal/domain/entities"
)

type contextKey struct{}

var userContextKey contextKey

// WithUser stores the authenticated user in the context
func WithUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, if any
func UserFromContext(ctx context.Context) (*entities.User, bool) {
	user, ok := ctx.Value(userContextKey).(*entities.User)
	return user, ok && user != nil
}
