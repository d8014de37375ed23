package account

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

// AccountService opens main accounts
type AccountService struct {
	Store  domain.Store
	Logger *slog.Logger
	Now    func() time.Time
}

// NewAccountService creates a new AccountService instance
func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{Store: store, Logger: logger, Now: time.Now}
}

// OpenAccount returns the user's main account, creating it with a zero balance
// when the user has none. The boolean reports whether it was created.
func (s *AccountService) OpenAccount(ctx context.Context, userID uuid.UUID) (*domain.Account, bool, error) {
	if userID == uuid.Nil {
		return nil, false, domain.Validationf("user ID is required")
	}

	var (
		account *domain.Account
		created bool
	)
	err := s.Store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		existing, err := repos.Accounts().GetByUserID(ctx, userID)
		if err == nil {
			account = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to load main account: %w", err)
		}

		now := s.Now().UTC()
		account = &domain.Account{
			ID:        uuid.New(),
			UserID:    userID,
			Balance:   decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := account.Validate(); err != nil {
			return err
		}
		created = true
		return repos.Accounts().Create(ctx, account)
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.Logger.InfoContext(ctx, "main account opened", "user_id", userID, "account_id", account.ID)
	}
	return account, created, nil
}
