package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugscape/storefront/internal/auth"
	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/services"
	"github.com/hugscape/storefront/server/internal/httputil"
)

// Authenticator resolves a bearer token to an active account
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entities.User, error)
}

// AuthMiddleware handles bearer-token checks for API requests
type AuthMiddleware struct {
	authenticator Authenticator
	log           *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		log:           slog.Default().With(slog.String("component", "auth_middleware")),
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller in the request context. A header without the "Bearer " prefix is
// rejected before the token is ever decoded.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerFromRequest(r)
		if err != nil {
			httputil.WriteUnauthorized(w)
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredential) {
				m.log.Debug("bearer token rejected", slog.String("path", r.URL.Path))
			}
			httputil.WriteError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}
