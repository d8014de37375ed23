package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/savings-splitter/internal/domain"
)

const schemeColumns = `id, user_id, name, description, target_amount, is_active, created_at, updated_at`

// schemeRepository implements domain.SchemeRepository
type schemeRepository struct {
	r *repositories
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheme(row rowScanner) (*domain.SavingsScheme, error) {
	var scheme domain.SavingsScheme
	var targetStr string

	if err := row.Scan(
		&scheme.ID,
		&scheme.UserID,
		&scheme.Name,
		&scheme.Description,
		&targetStr,
		&scheme.IsActive,
		&scheme.CreatedAt,
		&scheme.UpdatedAt,
	); err != nil {
		return nil, err
	}

	target, err := parseDecimal(targetStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scheme target amount: %w", err)
	}
	scheme.TargetAmount = target

	return &scheme, nil
}

// GetByID retrieves a scheme by its ID
func (s *schemeRepository) GetByID(ctx context.Context, userID, schemeID uuid.UUID) (*domain.SavingsScheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM savings_schemes WHERE id = $1 AND user_id = $2`

	scheme, err := scanScheme(s.r.q.QueryRowContext(ctx, query, schemeID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("scheme %s not found", schemeID)
		}
		return nil, fmt.Errorf("failed to get scheme by ID: %w", err)
	}
	return scheme, nil
}

// GetByName retrieves a scheme by name, ignoring case
func (s *schemeRepository) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.SavingsScheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM savings_schemes WHERE user_id = $1 AND lower(name) = lower($2)`

	scheme, err := scanScheme(s.r.q.QueryRowContext(ctx, query, userID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("scheme %q not found", name)
		}
		return nil, fmt.Errorf("failed to get scheme by name: %w", err)
	}
	return scheme, nil
}

// List retrieves all schemes of a user in creation order
func (s *schemeRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.SavingsScheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM savings_schemes WHERE user_id = $1 ORDER BY seq ASC`

	rows, err := s.r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemes: %w", err)
	}
	defer rows.Close()

	schemes := make([]*domain.SavingsScheme, 0)
	for rows.Next() {
		scheme, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheme: %w", err)
		}
		schemes = append(schemes, scheme)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schemes: %w", err)
	}
	return schemes, nil
}

// Create creates a new scheme
func (s *schemeRepository) Create(ctx context.Context, scheme *domain.SavingsScheme) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	query := `
		INSERT INTO savings_schemes (id, user_id, name, description, target_amount, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.r.q.ExecContext(ctx, query,
		scheme.ID,
		scheme.UserID,
		scheme.Name,
		scheme.Description,
		scheme.TargetAmount.String(),
		scheme.IsActive,
		scheme.CreatedAt,
		scheme.UpdatedAt,
	)
	if err != nil {
		return writeError(err, fmt.Sprintf("scheme %q", scheme.Name))
	}
	return nil
}

// Update persists every mutable scheme field
func (s *schemeRepository) Update(ctx context.Context, scheme *domain.SavingsScheme) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	query := `
		UPDATE savings_schemes
		SET name = $1, description = $2, target_amount = $3, is_active = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`

	res, err := s.r.q.ExecContext(ctx, query,
		scheme.Name,
		scheme.Description,
		scheme.TargetAmount.String(),
		scheme.IsActive,
		scheme.UpdatedAt,
		scheme.ID,
		scheme.UserID,
	)
	if err != nil {
		return writeError(err, fmt.Sprintf("scheme %q", scheme.Name))
	}
	return expectOneRow(res, "scheme", scheme.ID)
}

// Delete removes a scheme
func (s *schemeRepository) Delete(ctx context.Context, userID, schemeID uuid.UUID) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	res, err := s.r.q.ExecContext(ctx, `DELETE FROM savings_schemes WHERE id = $1 AND user_id = $2`, schemeID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete scheme: %w", err)
	}
	return expectOneRow(res, "scheme", schemeID)
}
