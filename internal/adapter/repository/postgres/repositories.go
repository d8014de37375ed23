package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/savings-splitter/internal/domain"
)

var errReadOnly = errors.New("write attempted in a read-only view")

// repositories binds the five repositories to one database transaction
type repositories struct {
	q        querier
	readOnly bool
}

func (r *repositories) Accounts() domain.AccountRepository         { return &accountRepository{r} }
func (r *repositories) Schemes() domain.SchemeRepository           { return &schemeRepository{r} }
func (r *repositories) SubAccounts() domain.SubAccountRepository   { return &subAccountRepository{r} }
func (r *repositories) SplitRules() domain.SplitRuleRepository     { return &splitRuleRepository{r} }
func (r *repositories) Transactions() domain.TransactionRepository { return &transactionRepository{r} }

func (r *repositories) writable() error {
	if r.readOnly {
		return errReadOnly
	}
	return nil
}

// parseDecimal parses a NUMERIC column scanned as text
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
