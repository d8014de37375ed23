package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/savings-splitter/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	r *repositories
}

// Create appends a ledger row
func (t *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if err := t.r.writable(); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (id, user_id, type, amount, scheme_id, sub_account_id, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := t.r.q.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		string(tx.Type),
		tx.Amount.String(),
		nullUUID(tx.SchemeID),
		nullUUID(tx.SubAccountID),
		tx.Description,
		tx.Date,
	)
	if err != nil {
		return writeError(err, "transaction")
	}
	return nil
}

// List retrieves a page of ledger rows, newest first.
// A non-positive limit returns every row from offset on.
func (t *transactionRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, scheme_id, sub_account_id, description, date
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, seq DESC
		LIMIT $2 OFFSET $3
	`

	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := t.r.q.QueryContext(ctx, query, userID, limitArg, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		var tx domain.Transaction
		var amountStr string
		var schemeID, subAccountID uuid.NullUUID

		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Type,
			&amountStr,
			&schemeID,
			&subAccountID,
			&tx.Description,
			&tx.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		amount, err := parseDecimal(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
		}
		tx.Amount = amount
		tx.SchemeID = uuidPtr(schemeID)
		tx.SubAccountID = uuidPtr(subAccountID)

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// Count returns the number of ledger rows of a user
func (t *transactionRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := t.r.q.QueryRowContext(ctx, `SELECT count(*) FROM transactions WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// DeleteBySchemeID removes every ledger row that references a scheme
func (t *transactionRepository) DeleteBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) error {
	if err := t.r.writable(); err != nil {
		return err
	}

	if _, err := t.r.q.ExecContext(ctx, `DELETE FROM transactions WHERE scheme_id = $1 AND user_id = $2`, schemeID, userID); err != nil {
		return fmt.Errorf("failed to delete scheme transactions: %w", err)
	}
	return nil
}
