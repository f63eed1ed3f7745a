package services

import (
	"errors"

	"github.com/hugscape/storefront/internal/domain/repositories"
)

var (
	// ErrInvalidCredential is the only failure an authentication caller
	// ever sees. Bad tokens and deactivated or missing accounts are
	// indistinguishable.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrValidation is returned when input is missing required fields or
	// carries an out-of-range value
	ErrValidation = errors.New("validation failed")
)

// IsConflict reports whether err is a retryable unique-constraint race
func IsConflict(err error) bool {
	return errors.Is(err, repositories.ErrConflict)
}

// IsNotFound reports whether err is a user or product lookup miss
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrUserNotFound) || errors.Is(err, repositories.ErrProductNotFound)
}
