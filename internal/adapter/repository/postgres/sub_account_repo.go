package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/savings-splitter/internal/domain"
)

const subAccountColumns = `id, user_id, account_id, scheme_id, name, balance, created_at, updated_at`

// subAccountRepository implements domain.SubAccountRepository
type subAccountRepository struct {
	r *repositories
}

func scanSubAccount(row rowScanner) (*domain.SubAccount, error) {
	var sa domain.SubAccount
	var balanceStr string

	if err := row.Scan(
		&sa.ID,
		&sa.UserID,
		&sa.AccountID,
		&sa.SchemeID,
		&sa.Name,
		&balanceStr,
		&sa.CreatedAt,
		&sa.UpdatedAt,
	); err != nil {
		return nil, err
	}

	balance, err := parseDecimal(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sub-account balance: %w", err)
	}
	sa.Balance = balance

	return &sa, nil
}

// GetBySchemeID retrieves the sub-account of a scheme
func (s *subAccountRepository) GetBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) (*domain.SubAccount, error) {
	query := `SELECT ` + subAccountColumns + ` FROM sub_accounts WHERE scheme_id = $1 AND user_id = $2`

	sa, err := scanSubAccount(s.r.q.QueryRowContext(ctx, query, schemeID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("sub-account not found for scheme %s", schemeID)
		}
		return nil, fmt.Errorf("failed to get sub-account: %w", err)
	}
	return sa, nil
}

// List retrieves all sub-accounts of a user
func (s *subAccountRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.SubAccount, error) {
	query := `SELECT ` + subAccountColumns + ` FROM sub_accounts WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := s.r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-accounts: %w", err)
	}
	defer rows.Close()

	subAccounts := make([]*domain.SubAccount, 0)
	for rows.Next() {
		sa, err := scanSubAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sub-account: %w", err)
		}
		subAccounts = append(subAccounts, sa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sub-accounts: %w", err)
	}
	return subAccounts, nil
}

// Create creates a new sub-account
func (s *subAccountRepository) Create(ctx context.Context, sa *domain.SubAccount) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	query := `
		INSERT INTO sub_accounts (id, user_id, account_id, scheme_id, name, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.r.q.ExecContext(ctx, query,
		sa.ID,
		sa.UserID,
		sa.AccountID,
		sa.SchemeID,
		sa.Name,
		sa.Balance.String(),
		sa.CreatedAt,
		sa.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "sub-account")
	}
	return nil
}

// Update persists the name and balance of a sub-account
func (s *subAccountRepository) Update(ctx context.Context, sa *domain.SubAccount) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	query := `
		UPDATE sub_accounts
		SET name = $1, balance = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`

	res, err := s.r.q.ExecContext(ctx, query,
		sa.Name,
		sa.Balance.String(),
		sa.UpdatedAt,
		sa.ID,
		sa.UserID,
	)
	if err != nil {
		return writeError(err, "sub-account")
	}
	return expectOneRow(res, "sub-account", sa.ID)
}

// DeleteBySchemeID removes the sub-account of a scheme, if any
func (s *subAccountRepository) DeleteBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) error {
	if err := s.r.writable(); err != nil {
		return err
	}

	if _, err := s.r.q.ExecContext(ctx, `DELETE FROM sub_accounts WHERE scheme_id = $1 AND user_id = $2`, schemeID, userID); err != nil {
		return fmt.Errorf("failed to delete sub-account: %w", err)
	}
	return nil
}
