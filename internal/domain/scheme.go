package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavingsScheme represents a named savings goal.
// Its balance lives in the SubAccount created together with it.
type SavingsScheme struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string // unique per user
	Description  string
	TargetAmount decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate ensures the scheme adheres to domain rules
func (s *SavingsScheme) Validate() error {
	if s.UserID == uuid.Nil {
		return errors.New("scheme must belong to a user")
	}
	if strings.TrimSpace(s.Name) == "" {
		return Validationf("scheme name is required")
	}
	if err := ValidateNonNegativeAmount("target amount", s.TargetAmount); err != nil {
		return err
	}
	return nil
}

// SchemeBalance joins a scheme with the live balance of its sub-account.
type SchemeBalance struct {
	Scheme     SavingsScheme
	SubAccount *SubAccount // nil only when the store is inconsistent
}

// Balance returns the sub-account balance, zero when the sub-account is missing.
func (sb SchemeBalance) Balance() decimal.Decimal {
	if sb.SubAccount == nil {
		return decimal.Zero
	}
	return sb.SubAccount.Balance
}

// Progress returns balance/target as a percentage rounded to 2 places.
// A zero target reports zero progress.
func (sb SchemeBalance) Progress() decimal.Decimal {
	if sb.Scheme.TargetAmount.IsZero() {
		return decimal.Zero
	}
	return sb.Balance().Mul(hundred).Div(sb.Scheme.TargetAmount).Round(2)
}
