package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/savings-splitter/internal/domain"
)

// RuleInput represents the input for creating or updating a split rule.
// Percentage is the legacy spelling of Value for percentage rules.
type RuleInput struct {
	SchemeID   uuid.UUID
	SplitType  string
	Value      *decimal.Decimal
	Percentage *decimal.Decimal
	IsActive   *bool
}

// NormalizedRule is the single canonical form a RuleInput is reduced to
type NormalizedRule struct {
	SchemeID uuid.UUID
	Type     domain.SplitType
	Value    decimal.Decimal
	IsActive bool
}

// Normalize folds the legacy percentage field into Value and resolves defaults.
// It never touches the store.
func (in RuleInput) Normalize() (NormalizedRule, error) {
	if in.SchemeID == uuid.Nil {
		return NormalizedRule{}, domain.Validationf("scheme ID is required")
	}

	splitType, err := domain.ParseSplitType(in.SplitType)
	if err != nil {
		return NormalizedRule{}, err
	}

	if in.Percentage != nil && splitType != domain.SplitTypePercentage {
		return NormalizedRule{}, domain.Validationf("percentage only applies to percentage rules")
	}

	var value decimal.Decimal
	switch {
	case in.Value != nil && in.Percentage != nil:
		if !in.Value.Equal(*in.Percentage) {
			return NormalizedRule{}, domain.Validationf("value %s and percentage %s disagree", in.Value, in.Percentage)
		}
		value = *in.Value
	case in.Value != nil:
		value = *in.Value
	case in.Percentage != nil:
		value = *in.Percentage
	default:
		return NormalizedRule{}, domain.Validationf("value is required")
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	return NormalizedRule{SchemeID: in.SchemeID, Type: splitType, Value: value, IsActive: active}, nil
}

// RuleView is a rule joined with its scheme name
type RuleView struct {
	Rule       domain.SplitRule
	SchemeName string
}

// RuleList is the rule set of a user with its active percentage total
type RuleList struct {
	Rules            []RuleView
	ActivePercentage decimal.Decimal
}

// RuleService handles split rule operations
type RuleService struct {
	Store  domain.Store
	Logger *slog.Logger
	Now    func() time.Time
}

// NewRuleService creates a new RuleService instance
func NewRuleService(store domain.Store, logger *slog.Logger) *RuleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleService{Store: store, Logger: logger, Now: time.Now}
}

// CreateOrUpdateRule creates the rule of a scheme, or updates it when one exists.
// Returns the stored rule and whether it was created.
// Logic:
//  1. Normalize the input (no store access on failure)
//  2. Inside one unit of work: check the scheme, load the existing rule
//  3. Reject if the user's active percentage total would exceed 100
//  4. Create or update
func (s *RuleService) CreateOrUpdateRule(ctx context.Context, userID uuid.UUID, input RuleInput) (*domain.SplitRule, bool, error) {
	normalized, err := input.Normalize()
	if err != nil {
		return nil, false, err
	}

	var (
		rule    *domain.SplitRule
		created bool
	)
	err = s.Store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Schemes().GetByID(ctx, userID, normalized.SchemeID); err != nil {
			return err
		}

		now := s.Now().UTC()
		existing, err := repos.SplitRules().GetBySchemeID(ctx, userID, normalized.SchemeID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			rule = &domain.SplitRule{
				ID:        uuid.New(),
				UserID:    userID,
				SchemeID:  normalized.SchemeID,
				CreatedAt: now,
			}
			created = true
		case err != nil:
			return fmt.Errorf("failed to load split rule: %w", err)
		default:
			rule = existing
		}

		rule.Type = normalized.Type
		rule.Value = normalized.Value
		rule.IsActive = normalized.IsActive
		rule.UpdatedAt = now

		if err := rule.Validate(); err != nil {
			return err
		}

		all, err := repos.SplitRules().List(ctx, userID, false)
		if err != nil {
			return fmt.Errorf("failed to list split rules: %w", err)
		}
		current := domain.ActivePercentageTotal(all, rule.ID)
		if rule.CountsTowardCeiling() && current.Add(rule.Value).GreaterThan(domain.MaxPercentageTotal) {
			return domain.Validationf("total splitting percentage cannot exceed 100%% (current total: %s%%)", current)
		}

		if created {
			return repos.SplitRules().Create(ctx, rule)
		}
		return repos.SplitRules().Update(ctx, rule)
	})
	if err != nil {
		return nil, false, err
	}

	s.Logger.InfoContext(ctx, "split rule saved",
		"user_id", userID, "rule_id", rule.ID, "scheme_id", rule.SchemeID,
		"type", rule.Type, "value", rule.Value.String(), "active", rule.IsActive, "created", created)

	return rule, created, nil
}

// GetRuleByScheme retrieves the rule of a scheme
func (s *RuleService) GetRuleByScheme(ctx context.Context, userID, schemeID uuid.UUID) (*domain.SplitRule, error) {
	var rule *domain.SplitRule
	err := s.Store.View(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		rule, err = repos.SplitRules().GetBySchemeID(ctx, userID, schemeID)
		return err
	})
	return rule, err
}

// ListRules retrieves every rule of a user, active or not, in insertion order
func (s *RuleService) ListRules(ctx context.Context, userID uuid.UUID) (*RuleList, error) {
	list := &RuleList{Rules: make([]RuleView, 0)}
	err := s.Store.View(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		rules, err := repos.SplitRules().List(ctx, userID, false)
		if err != nil {
			return fmt.Errorf("failed to list split rules: %w", err)
		}

		for _, rule := range rules {
			view := RuleView{Rule: *rule}
			scheme, err := repos.Schemes().GetByID(ctx, userID, rule.SchemeID)
			if err == nil {
				view.SchemeName = scheme.Name
			} else if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			list.Rules = append(list.Rules, view)
		}
		list.ActivePercentage = domain.ActivePercentageTotal(rules, uuid.Nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteRule removes a rule of the user
func (s *RuleService) DeleteRule(ctx context.Context, userID, ruleID uuid.UUID) error {
	err := s.Store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		return repos.SplitRules().Delete(ctx, userID, ruleID)
	})
	if err != nil {
		return err
	}
	s.Logger.InfoContext(ctx, "split rule deleted", "user_id", userID, "rule_id", ruleID)
	return nil
}
