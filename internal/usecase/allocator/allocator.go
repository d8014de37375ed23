package allocator

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/savings-splitter/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ErrOverAllocated is returned when the percentage shares add up to more than 100.
// Rule writes are gated on this, so seeing it at deposit time means stored data is inconsistent.
var ErrOverAllocated = fmt.Errorf("%w: percentage shares exceed 100%%", domain.ErrIntegrity)

// Share is one rule's claim on a deposit
type Share struct {
	SubAccountID uuid.UUID
	Type         domain.SplitType
	Value        decimal.Decimal // percentage for PERCENTAGE, amount for FIXED_AMOUNT
}

// Allocation is the amount routed to one sub-account
type Allocation struct {
	SubAccountID uuid.UUID
	Amount       decimal.Decimal
}

// Result holds the allocations, in share order, and what stays unallocated.
type Result struct {
	Allocations []Allocation
	Remainder   decimal.Decimal
}

// Allocated returns the sum of all allocations
func (r Result) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// Allocate splits amount across shares.
// Logic:
//  1. PERCENTAGE shares, in order: amount * pct / 100, truncated to currency precision
//  2. FIXED_AMOUNT shares, in order: min(value, what is still unallocated)
//  3. Remainder = amount - sum(allocations), kept by the caller's main account
//
// Truncation keeps sum(allocations) <= amount, so the remainder is never negative and
// sum(allocations) + remainder == amount exactly. Allocations may be zero.
func Allocate(amount decimal.Decimal, shares []Share) (Result, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Result{}, errors.New("total amount must be positive")
	}

	percentTotal := decimal.Zero
	for _, s := range shares {
		switch s.Type {
		case domain.SplitTypePercentage:
			if s.Value.IsNegative() || s.Value.GreaterThan(hundred) {
				return Result{}, fmt.Errorf("percentage share %s out of range", s.Value)
			}
			percentTotal = percentTotal.Add(s.Value)
		case domain.SplitTypeFixedAmount:
			if s.Value.IsNegative() {
				return Result{}, fmt.Errorf("fixed share %s is negative", s.Value)
			}
		default:
			return Result{}, fmt.Errorf("unknown share type %q", s.Type)
		}
	}
	if percentTotal.GreaterThan(hundred) {
		return Result{}, ErrOverAllocated
	}

	allocations := make([]Allocation, len(shares))
	remaining := amount

	// Step 1: percentages of the full deposit
	for i, s := range shares {
		allocations[i].SubAccountID = s.SubAccountID
		if s.Type != domain.SplitTypePercentage {
			continue
		}
		part := amount.Mul(s.Value).Div(hundred).Truncate(domain.CurrencyPlaces)
		allocations[i].Amount = part
		remaining = remaining.Sub(part)
	}

	// Step 2: fixed amounts out of what is left
	for i, s := range shares {
		if s.Type != domain.SplitTypeFixedAmount {
			continue
		}
		part := decimal.Min(s.Value.Truncate(domain.CurrencyPlaces), remaining)
		allocations[i].Amount = part
		remaining = remaining.Sub(part)
	}

	result := Result{Allocations: allocations, Remainder: remaining}

	// Safety check: no penny created or lost
	if !result.Allocated().Add(result.Remainder).Equal(amount) || result.Remainder.IsNegative() {
		return Result{}, errors.New("allocation does not add up to the total amount")
	}

	return result, nil
}
