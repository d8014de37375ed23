package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/savings-splitter/internal/domain"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// BalanceResult represents the main balance and what is parked in schemes
type BalanceResult struct {
	Main    decimal.Decimal
	Schemes decimal.Decimal
}

// TransactionPage is one page of the ledger, newest first
type TransactionPage struct {
	Transactions []domain.TransactionView
	Total        int
	Limit        int
	Offset       int
}

// DashboardService handles read-only projections
type DashboardService struct {
	Store domain.Store
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(store domain.Store) *DashboardService {
	return &DashboardService{Store: store}
}

// GetMainBalance returns the main balance, plus the sum of all scheme balances
func (s *DashboardService) GetMainBalance(ctx context.Context, userID uuid.UUID) (*BalanceResult, error) {
	result := &BalanceResult{Schemes: decimal.Zero}
	err := s.Store.View(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		account, err := repos.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		result.Main = account.Balance

		subAccounts, err := repos.SubAccounts().List(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list sub-accounts: %w", err)
		}
		for _, sa := range subAccounts {
			result.Schemes = result.Schemes.Add(sa.Balance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListSchemes returns every scheme joined with its live sub-account balance, in creation order
func (s *DashboardService) ListSchemes(ctx context.Context, userID uuid.UUID) ([]domain.SchemeBalance, error) {
	out := make([]domain.SchemeBalance, 0)
	err := s.Store.View(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		schemes, err := repos.Schemes().List(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list schemes: %w", err)
		}

		subAccounts, err := repos.SubAccounts().List(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list sub-accounts: %w", err)
		}
		bySchemeID := make(map[uuid.UUID]*domain.SubAccount, len(subAccounts))
		for _, sa := range subAccounts {
			bySchemeID[sa.SchemeID] = sa
		}

		for _, scheme := range schemes {
			out = append(out, domain.SchemeBalance{Scheme: *scheme, SubAccount: bySchemeID[scheme.ID]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransactions returns a page of the ledger, newest first, each row joined with its scheme name.
// A non-positive limit means DefaultPageSize; limits above MaxPageSize are clamped.
func (s *DashboardService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) (*TransactionPage, error) {
	if offset < 0 {
		return nil, domain.Validationf("offset cannot be negative")
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	page := &TransactionPage{Transactions: make([]domain.TransactionView, 0), Limit: limit, Offset: offset}
	err := s.Store.View(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		total, err := repos.Transactions().Count(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}
		page.Total = total

		rows, err := repos.Transactions().List(ctx, userID, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}

		names := make(map[uuid.UUID]string)
		for _, row := range rows {
			view := domain.TransactionView{Transaction: *row}
			if row.SchemeID != nil {
				name, ok := names[*row.SchemeID]
				if !ok {
					scheme, err := repos.Schemes().GetByID(ctx, userID, *row.SchemeID)
					if err != nil && !errors.Is(err, domain.ErrNotFound) {
						return err
					}
					if scheme != nil {
						name = scheme.Name
					}
					names[*row.SchemeID] = name
				}
				view.SchemeName = name
			}
			page.Transactions = append(page.Transactions, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
