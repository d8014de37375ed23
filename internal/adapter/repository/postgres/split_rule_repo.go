package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/savings-splitter/internal/domain"
)

const splitRuleColumns = `id, user_id, scheme_id, split_type, value, is_active, created_at, updated_at`

// splitRuleRepository implements domain.SplitRuleRepository
type splitRuleRepository struct {
	r *repositories
}

func scanSplitRule(row rowScanner) (*domain.SplitRule, error) {
	var rule domain.SplitRule
	var valueStr string

	if err := row.Scan(
		&rule.ID,
		&rule.UserID,
		&rule.SchemeID,
		&rule.Type,
		&valueStr,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}

	// Parse value (DECIMAL)
	value, err := parseDecimal(valueStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse split rule value: %w", err)
	}
	rule.Value = value

	return &rule, nil
}

func (s *splitRuleRepository) getOne(ctx context.Context, query string, notFound error, args ...any) (*domain.SplitRule, error) {
	rule, err := scanSplitRule(s.r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to get split rule: %w", err)
	}
	return rule, nil
}

// GetByID retrieves a split rule by its ID
func (s *splitRuleRepository) GetByID(ctx context.Context, userID, ruleID uuid.UUID) (*domain.SplitRule, error) {
	query := `SELECT ` + splitRuleColumns + ` FROM split_rules WHERE id = $1 AND user_id = $2`
	return s.getOne(ctx, query, domain.NotFoundf("split rule %s not found", ruleID), ruleID, userID)
}

// GetBySchemeID retrieves the split rule of a scheme
func (s *splitRuleRepository) GetBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) (*domain.SplitRule, error) {
	query := `SELECT ` + splitRuleColumns + ` FROM split_rules WHERE scheme_id = $1 AND user_id = $2`
	return s.getOne(ctx, query, domain.NotFoundf("split rule not found for scheme %s", schemeID), schemeID, userID)
}

// List retrieves the split rules of a user in insertion order
func (s *splitRuleRepository) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.SplitRule, error) {
	query := `
		SELECT ` + splitRuleColumns + `
		FROM split_rules
		WHERE user_id = $1 AND ($2 = FALSE OR is_active)
		ORDER BY seq ASC
	`

	rows, err := s.r.q.QueryContext(ctx, query, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query split rules: %w", err)
	}
	defer rows.Close()

	rules := make([]*domain.SplitRule, 0)
	for rows.Next() {
		rule, err := scanSplitRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating split rules: %w", err)
	}
	return rules, nil
}

// Create creates a new split rule
func (s *splitRuleRepository) Create(ctx context.Context, rule *domain.SplitRule) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	query := `
		INSERT INTO split_rules (id, user_id, scheme_id, split_type, value, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.r.q.ExecContext(ctx, query,
		rule.ID,
		rule.UserID,
		rule.SchemeID,
		string(rule.Type),
		rule.Value.String(),
		rule.IsActive,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "split rule")
	}
	return nil
}

// Update persists the type, value and active flag of a split rule
func (s *splitRuleRepository) Update(ctx context.Context, rule *domain.SplitRule) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	query := `
		UPDATE split_rules
		SET split_type = $1, value = $2, is_active = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`

	res, err := s.r.q.ExecContext(ctx, query,
		string(rule.Type),
		rule.Value.String(),
		rule.IsActive,
		rule.UpdatedAt,
		rule.ID,
		rule.UserID,
	)
	if err != nil {
		return writeError(err, "split rule")
	}
	return expectOneRow(res, "split rule", rule.ID)
}

// Delete removes a split rule
func (s *splitRuleRepository) Delete(ctx context.Context, userID, ruleID uuid.UUID) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	res, err := s.r.q.ExecContext(ctx, `DELETE FROM split_rules WHERE id = $1 AND user_id = $2`, ruleID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete split rule: %w", err)
	}
	return expectOneRow(res, "split rule", ruleID)
}

// DeleteBySchemeID removes the split rule of a scheme, if any
func (s *splitRuleRepository) DeleteBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	if _, err := s.r.q.ExecContext(ctx, `DELETE FROM split_rules WHERE scheme_id = $1 AND user_id = $2`, schemeID, userID); err != nil {
		return fmt.Errorf("failed to delete split rule: %w", err)
	}
	return nil
}
