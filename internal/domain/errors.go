package domain

import (
	"errors"
	"fmt"
)

// Error classes shared by every usecase. Callers classify with errors.Is;
// anything outside the first three classes is a server error.
var (
	// ErrValidation marks bad input shape or range. No mutation was attempted.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing Account, SubAccount, Scheme or Rule.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientFunds marks a withdrawal larger than the sub-account balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrIntegrity marks stored data that breaks a domain invariant,
	// e.g. an active rule set above 100%.
	ErrIntegrity = errors.New("data integrity violation")
)

// Validationf builds an ErrValidation with a human-readable reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrNotFound with a human-readable reason.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// IsClientError reports whether err is recoverable by the caller
// (validation, not found, insufficient funds).
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientFunds)
}
