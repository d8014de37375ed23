package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/simaogato/savings-splitter/internal/domain"
)

// SQLSTATE codes the store reacts to
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// isRetryable reports whether err aborted the transaction in a way that a
// fresh attempt may succeed
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}

// writeError classifies a failed INSERT/UPDATE/DELETE on what
func writeError(err error, what string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return domain.Validationf("%s already exists", what)
		case codeForeignKeyViolation:
			return domain.NotFoundf("%s references a missing record", what)
		case codeCheckViolation:
			return fmt.Errorf("%w: %s violates %s", domain.ErrIntegrity, what, pqErr.Constraint)
		}
	}
	return fmt.Errorf("failed to write %s: %w", what, err)
}
