package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hugscape/storefront/internal/domain/repositories"
)

// uniqueViolation is SQLSTATE 23505
const uniqueViolation pq.ErrorCode = "23505"

// translateError maps driver errors onto repository sentinels. A unique
// violation becomes repositories.ErrConflict, keeping the constraint name.
func translateError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w (%s)", msg, repositories.ErrConflict, pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
