package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitType represents how a split rule value is interpreted
type SplitType string

const (
	SplitTypePercentage  SplitType = "percentage"
	SplitTypeFixedAmount SplitType = "fixed_amount"
)

// MaxPercentageTotal is the ceiling for the sum of a user's active percentage rules.
var MaxPercentageTotal = decimal.NewFromInt(100)

// ParseSplitType maps user input to a SplitType.
// An empty string means percentage, the historical default.
func ParseSplitType(s string) (SplitType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "percentage", "percent":
		return SplitTypePercentage, nil
	case "fixed_amount", "fixed":
		return SplitTypeFixedAmount, nil
	default:
		return "", Validationf("split type must be percentage or fixed_amount, got %q", s)
	}
}

// SplitRule routes a portion of every deposit into one scheme's sub-account.
// There is at most one rule per (user, scheme).
type SplitRule struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	SchemeID  uuid.UUID
	Type      SplitType
	Value     decimal.Decimal // percentage in [0,100] for PERCENTAGE, amount >= 0 for FIXED_AMOUNT
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate ensures the split rule adheres to domain rules
func (r *SplitRule) Validate() error {
	if r.UserID == uuid.Nil || r.SchemeID == uuid.Nil {
		return errors.New("split rule must reference a user and a scheme")
	}

	switch r.Type {
	case SplitTypePercentage:
		if r.Value.IsNegative() || r.Value.GreaterThan(MaxPercentageTotal) {
			return Validationf("percentage must be between 0 and 100")
		}
		if !HasCurrencyPrecision(r.Value) {
			return Validationf("percentage must have at most %d decimal places", CurrencyPlaces)
		}
	case SplitTypeFixedAmount:
		if err := ValidateNonNegativeAmount("fixed amount", r.Value); err != nil {
			return err
		}
	default:
		return Validationf("split type must be percentage or fixed_amount")
	}

	return nil
}

// CountsTowardCeiling reports whether the rule takes part in the 100% ceiling.
func (r *SplitRule) CountsTowardCeiling() bool {
	return r.IsActive && r.Type == SplitTypePercentage
}

// ActivePercentageTotal sums the values of the active percentage rules,
// skipping the rule with id exclude (uuid.Nil excludes nothing).
func ActivePercentageTotal(rules []*SplitRule, exclude uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rules {
		if r.ID == exclude || !r.CountsTowardCeiling() {
			continue
		}
		total = total.Add(r.Value)
	}
	return total
}
