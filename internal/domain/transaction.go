package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger movement
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// Transaction is an immutable ledger row: one row per balance leg touched.
// The main-account leg of a deposit carries no scheme reference.
type Transaction struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Type         TransactionType
	Amount       decimal.Decimal // always positive
	SchemeID     *uuid.UUID
	SubAccountID *uuid.UUID
	Description  string
	Date         time.Time
}

// Validate ensures the transaction adheres to domain rules
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("transaction must belong to a user")
	}

	if t.Type != TransactionTypeDeposit && t.Type != TransactionTypeWithdrawal {
		return errors.New("transaction type must be deposit or withdrawal")
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive")
	}

	// Scheme and sub-account references travel together
	if (t.SchemeID == nil) != (t.SubAccountID == nil) {
		return errors.New("transaction must reference both scheme and sub-account, or neither")
	}

	if t.Type == TransactionTypeWithdrawal && t.SchemeID == nil {
		return errors.New("withdrawal must reference a scheme")
	}

	return nil
}

// IsSchemeLeg reports whether the row moved money in or out of a sub-account.
func (t *Transaction) IsSchemeLeg() bool {
	return t.SchemeID != nil
}

// TransactionView is a ledger row joined with its scheme name (empty when absent).
type TransactionView struct {
	Transaction
	SchemeName string
}
