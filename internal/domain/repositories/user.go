package repositories

import (
	"context"
	"time"

	"github.com/hugscape/storefront/internal/domain/entities"
)

// UserRepository defines the interface for user data access.
//
// Find* methods report absence through the boolean result, never through an
// error; an error always means the lookup itself failed.
type UserRepository interface {
	// Create inserts a new user. Returns ErrConflict when the email or
	// external subject is already taken.
	Create(ctx context.Context, user *entities.User) error

	// Update persists every mutable column of an existing user.
	// Returns ErrUserNotFound when no row matches and ErrConflict on a
	// unique violation.
	Update(ctx context.Context, user *entities.User) error

	// FindByExternalSubject looks up a user regardless of active status
	FindByExternalSubject(ctx context.Context, subject string) (*entities.User, bool, error)

	// FindByEmail looks up a user regardless of active status
	FindByEmail(ctx context.Context, email string) (*entities.User, bool, error)

	// FindActiveByID looks up an active user; inactive users are absent
	FindActiveByID(ctx context.Context, id string) (*entities.User, bool, error)

	// FindByID looks up a user regardless of active status
	FindByID(ctx context.Context, id string) (*entities.User, bool, error)

	// SetActive flips the active flag
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
}
