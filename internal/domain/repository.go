package domain

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for main account persistence operations
type AccountRepository interface {
	// GetByUserID retrieves the user's main account. Returns ErrNotFound when absent.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Account, error)

	// Create creates a new account. A second account for the same user is rejected.
	Create(ctx context.Context, account *Account) error

	// UpdateBalance persists account.Balance
	UpdateBalance(ctx context.Context, account *Account) error
}

// SchemeRepository defines the interface for savings scheme persistence operations
type SchemeRepository interface {
	// GetByID retrieves a scheme owned by userID. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, userID, schemeID uuid.UUID) (*SavingsScheme, error)

	// GetByName retrieves a scheme by its per-user unique name. Returns ErrNotFound when absent.
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*SavingsScheme, error)

	// List retrieves all schemes of a user in creation order
	List(ctx context.Context, userID uuid.UUID) ([]*SavingsScheme, error)

	Create(ctx context.Context, scheme *SavingsScheme) error
	Update(ctx context.Context, scheme *SavingsScheme) error
	Delete(ctx context.Context, userID, schemeID uuid.UUID) error
}

// SubAccountRepository defines the interface for sub-account persistence operations
type SubAccountRepository interface {
	// GetBySchemeID retrieves the sub-account of a scheme. Returns ErrNotFound when absent.
	GetBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) (*SubAccount, error)

	// List retrieves all sub-accounts of a user
	List(ctx context.Context, userID uuid.UUID) ([]*SubAccount, error)

	Create(ctx context.Context, subAccount *SubAccount) error

	// Update persists Name and Balance
	Update(ctx context.Context, subAccount *SubAccount) error

	DeleteBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) error
}

// SplitRuleRepository defines the interface for split rule persistence operations
type SplitRuleRepository interface {
	// GetByID retrieves a rule owned by userID. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, userID, ruleID uuid.UUID) (*SplitRule, error)

	// GetBySchemeID retrieves the rule of a scheme. Returns ErrNotFound when absent.
	GetBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) (*SplitRule, error)

	// List retrieves the rules of a user in insertion order.
	// If activeOnly is true, inactive rules are filtered out.
	List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*SplitRule, error)

	Create(ctx context.Context, rule *SplitRule) error
	Update(ctx context.Context, rule *SplitRule) error
	Delete(ctx context.Context, userID, ruleID uuid.UUID) error
	DeleteBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) error
}

// TransactionRepository defines the interface for ledger persistence operations.
// Rows are append-only; DeleteBySchemeID exists only for scheme cascade deletion.
type TransactionRepository interface {
	// Create appends a ledger row
	Create(ctx context.Context, tx *Transaction) error

	// List retrieves a page of a user's rows, newest first
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error)

	// Count returns the number of rows of a user
	Count(ctx context.Context, userID uuid.UUID) (int, error)

	DeleteBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) error
}

// Repositories groups the repositories bound to one unit of work
type Repositories interface {
	Accounts() AccountRepository
	Schemes() SchemeRepository
	SubAccounts() SubAccountRepository
	SplitRules() SplitRuleRepository
	Transactions() TransactionRepository
}

// Store is the Ledger Store: atomic multi-record units of work keyed by user.
type Store interface {
	// RunInTx runs fn as one all-or-nothing unit. Units for the same user are
	// serialized; units for different users run independently. If fn returns an
	// error nothing it wrote is visible afterwards. The unit is bounded by the
	// store's timeout.
	RunInTx(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos Repositories) error) error

	// View runs fn against a read-only consistent snapshot of the user's records.
	View(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos Repositories) error) error
}
