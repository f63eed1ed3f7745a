package repositories

import "errors"

// Domain-specific repository errors
var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrProductNotFound is returned when a product cannot be found
	ErrProductNotFound = errors.New("product not found")

	// ErrConflict is returned when a write violates a unique constraint,
	// typically two concurrent first logins racing on the same email or
	// subject. Callers may retry.
	ErrConflict = errors.New("conflicting write")
)
