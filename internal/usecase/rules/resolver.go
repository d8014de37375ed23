package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/savings-splitter/internal/domain"
)

// ResolvedRule is an active rule paired with its live scheme and sub-account
type ResolvedRule struct {
	Rule       *domain.SplitRule
	Scheme     *domain.SavingsScheme
	SubAccount *domain.SubAccount
}

// Resolver loads the active rule set of a user
type Resolver struct {
	Logger *slog.Logger
}

// NewResolver creates a new Resolver instance
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Logger: logger}
}

// Resolve returns the user's active rules in insertion order, each joined with
// its scheme and sub-account. It runs inside the caller's unit of work.
//
// A rule whose scheme or sub-account no longer exists is logged and skipped;
// it never aborts the caller. Any other lookup failure is returned.
func (r *Resolver) Resolve(ctx context.Context, repos domain.Repositories, userID uuid.UUID) ([]ResolvedRule, error) {
	rules, err := repos.SplitRules().List(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list active split rules: %w", err)
	}

	resolved := make([]ResolvedRule, 0, len(rules))
	for _, rule := range rules {
		scheme, err := repos.Schemes().GetByID(ctx, userID, rule.SchemeID)
		if errors.Is(err, domain.ErrNotFound) {
			r.Logger.WarnContext(ctx, "skipping split rule with missing scheme",
				"user_id", userID, "rule_id", rule.ID, "scheme_id", rule.SchemeID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load scheme %s: %w", rule.SchemeID, err)
		}

		subAccount, err := repos.SubAccounts().GetBySchemeID(ctx, userID, rule.SchemeID)
		if errors.Is(err, domain.ErrNotFound) {
			r.Logger.WarnContext(ctx, "skipping split rule with missing sub-account",
				"user_id", userID, "rule_id", rule.ID, "scheme_id", rule.SchemeID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load sub-account of scheme %s: %w", rule.SchemeID, err)
		}

		resolved = append(resolved, ResolvedRule{Rule: rule, Scheme: scheme, SubAccount: subAccount})
	}

	return resolved, nil
}

// PercentageTotal sums the percentage values of a resolved rule set
func PercentageTotal(resolved []ResolvedRule) decimal.Decimal {
	rules := make([]*domain.SplitRule, 0, len(resolved))
	for _, rr := range resolved {
		rules = append(rules, rr.Rule)
	}
	return domain.ActivePercentageTotal(rules, uuid.Nil)
}
