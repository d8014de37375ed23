package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/savings-splitter/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	r *repositories
}

// GetByUserID retrieves the main account of a user
func (a *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, user_id, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var account domain.Account
	var balanceStr string

	err := a.r.q.QueryRowContext(ctx, query, userID).Scan(
		&account.ID,
		&account.UserID,
		&balanceStr,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("main account not found for user %s", userID)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	balance, err := parseDecimal(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse account balance: %w", err)
	}
	account.Balance = balance

	return &account, nil
}

// Create creates a new main account
func (a *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := a.r.writable(); err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (id, user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := a.r.q.ExecContext(ctx, query,
		account.ID,
		account.UserID,
		account.Balance.String(),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return writeError(err, "main account")
	}
	return nil
}

// UpdateBalance persists the account balance
func (a *accountRepository) UpdateBalance(ctx context.Context, account *domain.Account) error {
	if err := a.r.writable(); err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET balance = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`

	res, err := a.r.q.ExecContext(ctx, query,
		account.Balance.String(),
		account.UpdatedAt,
		account.ID,
		account.UserID,
	)
	if err != nil {
		return writeError(err, "main account")
	}
	return expectOneRow(res, "main account", account.ID)
}

// expectOneRow turns a zero-row UPDATE/DELETE into ErrNotFound
func expectOneRow(res sql.Result, what string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NotFoundf("%s %s not found", what, id)
	}
	return nil
}
