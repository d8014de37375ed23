package scheme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/savings-splitter/internal/domain"
)

// CreateSchemeInput represents the input for creating a scheme
type CreateSchemeInput struct {
	Name         string
	Description  string
	TargetAmount decimal.Decimal
}

// UpdateSchemeInput represents a partial scheme update. Nil fields are left alone.
type UpdateSchemeInput struct {
	Name         *string
	Description  *string
	TargetAmount *decimal.Decimal
	IsActive     *bool
}

// SchemeService is the scheme and sub-account registry
type SchemeService struct {
	Store  domain.Store
	Logger *slog.Logger
	Now    func() time.Time
}

// NewSchemeService creates a new SchemeService instance
func NewSchemeService(store domain.Store, logger *slog.Logger) *SchemeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemeService{Store: store, Logger: logger, Now: time.Now}
}

// CreateScheme creates a scheme together with its empty sub-account.
// The user must already have a main account.
func (s *SchemeService) CreateScheme(ctx context.Context, userID uuid.UUID, input CreateSchemeInput) (*domain.SchemeBalance, error) {
	now := s.Now().UTC()
	scheme := &domain.SavingsScheme{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		TargetAmount: input.TargetAmount,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := scheme.Validate(); err != nil {
		return nil, err
	}

	var subAccount *domain.SubAccount
	err := s.Store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		account, err := repos.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}

		if _, err := repos.Schemes().GetByName(ctx, userID, scheme.Name); err == nil {
			return domain.Validationf("you already have a scheme named %q", scheme.Name)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if err := repos.Schemes().Create(ctx, scheme); err != nil {
			return err
		}

		subAccount = &domain.SubAccount{
			ID:        uuid.New(),
			UserID:    userID,
			AccountID: account.ID,
			SchemeID:  scheme.ID,
			Name:      scheme.Name,
			Balance:   decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := subAccount.Validate(); err != nil {
			return err
		}
		return repos.SubAccounts().Create(ctx, subAccount)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "scheme created", "user_id", userID, "scheme_id", scheme.ID, "name", scheme.Name)
	return &domain.SchemeBalance{Scheme: *scheme, SubAccount: subAccount}, nil
}

// GetScheme retrieves a scheme with its live balance
func (s *SchemeService) GetScheme(ctx context.Context, userID, schemeID uuid.UUID) (*domain.SchemeBalance, error) {
	var result *domain.SchemeBalance
	err := s.Store.View(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		result, err = load(ctx, repos, userID, schemeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateScheme applies a partial update. A rename is mirrored into the sub-account.
func (s *SchemeService) UpdateScheme(ctx context.Context, userID, schemeID uuid.UUID, input UpdateSchemeInput) (*domain.SchemeBalance, error) {
	var result *domain.SchemeBalance
	err := s.Store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		current, err := load(ctx, repos, userID, schemeID)
		if err != nil {
			return err
		}

		scheme := current.Scheme
		renamed := false
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			renamed = name != scheme.Name
			scheme.Name = name
		}
		if input.Description != nil {
			scheme.Description = strings.TrimSpace(*input.Description)
		}
		if input.TargetAmount != nil {
			scheme.TargetAmount = *input.TargetAmount
		}
		if input.IsActive != nil {
			scheme.IsActive = *input.IsActive
		}
		scheme.UpdatedAt = s.Now().UTC()

		if err := scheme.Validate(); err != nil {
			return err
		}
		if err := repos.Schemes().Update(ctx, &scheme); err != nil {
			return err
		}

		if renamed && current.SubAccount != nil {
			current.SubAccount.Name = scheme.Name
			current.SubAccount.UpdatedAt = scheme.UpdatedAt
			if err := repos.SubAccounts().Update(ctx, current.SubAccount); err != nil {
				return fmt.Errorf("failed to rename sub-account: %w", err)
			}
		}

		result = &domain.SchemeBalance{Scheme: scheme, SubAccount: current.SubAccount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "scheme updated", "user_id", userID, "scheme_id", schemeID)
	return result, nil
}

// DeleteScheme removes a scheme together with its sub-account, its rule and
// every ledger row that references it. Any balance left in the sub-account
// goes with it.
func (s *SchemeService) DeleteScheme(ctx context.Context, userID, schemeID uuid.UUID) error {
	var balance decimal.Decimal
	err := s.Store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		current, err := load(ctx, repos, userID, schemeID)
		if err != nil {
			return err
		}
		balance = current.Balance()

		if err := repos.SplitRules().DeleteBySchemeID(ctx, userID, schemeID); err != nil {
			return fmt.Errorf("failed to delete split rule: %w", err)
		}
		if err := repos.Transactions().DeleteBySchemeID(ctx, userID, schemeID); err != nil {
			return fmt.Errorf("failed to delete scheme transactions: %w", err)
		}
		if err := repos.SubAccounts().DeleteBySchemeID(ctx, userID, schemeID); err != nil {
			return fmt.Errorf("failed to delete sub-account: %w", err)
		}
		return repos.Schemes().Delete(ctx, userID, schemeID)
	})
	if err != nil {
		return err
	}

	s.Logger.InfoContext(ctx, "scheme deleted",
		"user_id", userID, "scheme_id", schemeID, "discarded_balance", balance.String())
	return nil
}

// load reads a scheme and its sub-account within a unit of work
func load(ctx context.Context, repos domain.Repositories, userID, schemeID uuid.UUID) (*domain.SchemeBalance, error) {
	scheme, err := repos.Schemes().GetByID(ctx, userID, schemeID)
	if err != nil {
		return nil, err
	}

	subAccount, err := repos.SubAccounts().GetBySchemeID(ctx, userID, schemeID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return &domain.SchemeBalance{Scheme: *scheme, SubAccount: subAccount}, nil
}
