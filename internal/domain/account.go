package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the user's main wallet. Exactly one exists per user.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   decimal.Decimal // never negative
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.UserID == uuid.Nil {
		return errors.New("account must belong to a user")
	}
	if a.Balance.IsNegative() {
		return errors.New("account balance cannot be negative")
	}
	return nil
}

// Credit adds amount to the main balance.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}

// SubAccount holds the balance of one SavingsScheme (1:1).
type SubAccount struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	AccountID uuid.UUID
	SchemeID  uuid.UUID
	Name      string // mirrors the scheme name
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate ensures the sub-account adheres to domain rules
func (s *SubAccount) Validate() error {
	if s.UserID == uuid.Nil || s.AccountID == uuid.Nil || s.SchemeID == uuid.Nil {
		return errors.New("sub-account must reference a user, an account and a scheme")
	}
	if s.Name == "" {
		return errors.New("sub-account name cannot be empty")
	}
	if s.Balance.IsNegative() {
		return errors.New("sub-account balance cannot be negative")
	}
	return nil
}

// Credit adds amount to the sub-account balance.
func (s *SubAccount) Credit(amount decimal.Decimal) {
	s.Balance = s.Balance.Add(amount)
}

// Debit removes amount from the sub-account balance.
// Returns ErrInsufficientFunds and leaves the balance untouched when amount exceeds it.
func (s *SubAccount) Debit(amount decimal.Decimal) error {
	if s.Balance.LessThan(amount) {
		return fmt.Errorf("%w: balance of %s is %s, requested %s",
			ErrInsufficientFunds, s.Name, s.Balance.StringFixed(CurrencyPlaces), amount.StringFixed(CurrencyPlaces))
	}
	s.Balance = s.Balance.Sub(amount)
	return nil
}
