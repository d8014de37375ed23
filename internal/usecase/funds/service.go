package funds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/savings-splitter/internal/domain"
	"github.com/simaogato/savings-splitter/internal/usecase/allocator"
	"github.com/simaogato/savings-splitter/internal/usecase/rules"
)

const mainDepositDescription = "Initial deposit to main account"

// SplitLeg is the part of a deposit routed into one scheme
type SplitLeg struct {
	SchemeID      uuid.UUID
	SubAccountID  uuid.UUID
	SchemeName    string
	Type          domain.SplitType
	Value         decimal.Decimal
	Amount        decimal.Decimal
	TransactionID uuid.UUID
}

// DepositResult represents the outcome of a committed deposit
type DepositResult struct {
	MainBalance    decimal.Decimal
	Splits         []SplitLeg
	Unallocated    decimal.Decimal
	TransactionIDs []uuid.UUID // main leg first, then split legs in rule order
}

// WithdrawResult represents the outcome of a committed withdrawal
type WithdrawResult struct {
	MainBalance   decimal.Decimal
	SchemeBalance decimal.Decimal
	TransactionID uuid.UUID
}

// FundsService moves money between the main account and scheme sub-accounts
type FundsService struct {
	Store    domain.Store
	Resolver *rules.Resolver
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewFundsService creates a new FundsService instance
func NewFundsService(store domain.Store, resolver *rules.Resolver, logger *slog.Logger) *FundsService {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = rules.NewResolver(logger)
	}
	return &FundsService{
		Store:    store,
		Resolver: resolver,
		Logger:   logger,
		Now:      time.Now,
	}
}

// Deposit credits amount to the user's main account and splits it across schemes.
// Logic:
//  1. Validate amount (no store access on failure)
//  2. Inside one unit of work:
//     - Credit the main account and record the main leg
//     - Resolve active rules and allocate the full amount
//     - Credit each sub-account with a non-zero allocation and record its leg
//  3. Whatever no rule claimed stays in the main account and is reported as Unallocated
func (s *FundsService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*DepositResult, error) {
	if err := domain.ValidatePositiveAmount("deposit amount", amount); err != nil {
		return nil, err
	}

	var result *DepositResult
	err := s.Store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		result, err = s.deposit(ctx, repos, userID, amount)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "deposit", err, "user_id", userID, "amount", amount.String())
		return nil, err
	}

	if result.Unallocated.IsPositive() {
		s.Logger.InfoContext(ctx, "deposit left an unallocated remainder in the main account",
			"user_id", userID, "amount", amount.String(), "unallocated", result.Unallocated.String())
	}

	return result, nil
}

func (s *FundsService) deposit(ctx context.Context, repos domain.Repositories, userID uuid.UUID, amount decimal.Decimal) (*DepositResult, error) {
	now := s.Now().UTC()

	account, err := repos.Accounts().GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	account.Credit(amount)
	account.UpdatedAt = now
	if err := repos.Accounts().UpdateBalance(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update main account: %w", err)
	}

	mainTx := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.TransactionTypeDeposit,
		Amount:      amount,
		Description: mainDepositDescription,
		Date:        now,
	}
	if err := s.record(ctx, repos, mainTx); err != nil {
		return nil, err
	}

	resolved, err := s.Resolver.Resolve(ctx, repos, userID)
	if err != nil {
		return nil, err
	}

	shares := make([]allocator.Share, 0, len(resolved))
	for _, rr := range resolved {
		shares = append(shares, allocator.Share{
			SubAccountID: rr.SubAccount.ID,
			Type:         rr.Rule.Type,
			Value:        rr.Rule.Value,
		})
	}

	allocation, err := allocator.Allocate(amount, shares)
	if errors.Is(err, allocator.ErrOverAllocated) {
		s.Logger.ErrorContext(ctx, "active split rules exceed 100%, rejecting deposit",
			"user_id", userID, "amount", amount.String(),
			"active_percentage", rules.PercentageTotal(resolved).String())
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to allocate deposit: %w", err)
	}

	result := &DepositResult{
		Splits:         make([]SplitLeg, 0, len(resolved)),
		Unallocated:    allocation.Remainder,
		TransactionIDs: []uuid.UUID{mainTx.ID},
	}

	for i, alloc := range allocation.Allocations {
		if alloc.Amount.IsZero() {
			continue
		}
		rr := resolved[i]

		rr.SubAccount.Credit(alloc.Amount)
		rr.SubAccount.UpdatedAt = now
		if err := repos.SubAccounts().Update(ctx, rr.SubAccount); err != nil {
			return nil, fmt.Errorf("failed to update sub-account %s: %w", rr.SubAccount.ID, err)
		}

		schemeID := rr.Scheme.ID
		subAccountID := rr.SubAccount.ID
		splitTx := &domain.Transaction{
			ID:           uuid.New(),
			UserID:       userID,
			Type:         domain.TransactionTypeDeposit,
			Amount:       alloc.Amount,
			SchemeID:     &schemeID,
			SubAccountID: &subAccountID,
			Description:  splitDescription(rr),
			Date:         now,
		}
		if err := s.record(ctx, repos, splitTx); err != nil {
			return nil, err
		}

		result.Splits = append(result.Splits, SplitLeg{
			SchemeID:      schemeID,
			SubAccountID:  subAccountID,
			SchemeName:    rr.Scheme.Name,
			Type:          rr.Rule.Type,
			Value:         rr.Rule.Value,
			Amount:        alloc.Amount,
			TransactionID: splitTx.ID,
		})
		result.TransactionIDs = append(result.TransactionIDs, splitTx.ID)
	}

	result.MainBalance = account.Balance
	return result, nil
}

// Withdraw moves amount from a scheme's sub-account back to the main account.
// Logic:
//  1. Validate amount and scheme (no store access on failure)
//  2. Inside one unit of work:
//     - Debit the sub-account, rejecting with ErrInsufficientFunds if it cannot cover amount
//     - Credit the main account
//     - Record one withdrawal leg
func (s *FundsService) Withdraw(ctx context.Context, userID, schemeID uuid.UUID, amount decimal.Decimal) (*WithdrawResult, error) {
	if err := domain.ValidatePositiveAmount("withdrawal amount", amount); err != nil {
		return nil, err
	}
	if schemeID == uuid.Nil {
		return nil, domain.Validationf("scheme is required for withdrawal")
	}

	var result *WithdrawResult
	err := s.Store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		now := s.Now().UTC()

		subAccount, err := repos.SubAccounts().GetBySchemeID(ctx, userID, schemeID)
		if err != nil {
			return err
		}

		// Checked under the user's lock, so no concurrent withdrawal can see the same balance
		if err := subAccount.Debit(amount); err != nil {
			return err
		}
		subAccount.UpdatedAt = now
		if err := repos.SubAccounts().Update(ctx, subAccount); err != nil {
			return fmt.Errorf("failed to update sub-account %s: %w", subAccount.ID, err)
		}

		account, err := repos.Accounts().GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		account.Credit(amount)
		account.UpdatedAt = now
		if err := repos.Accounts().UpdateBalance(ctx, account); err != nil {
			return fmt.Errorf("failed to update main account: %w", err)
		}

		schemeName := "a scheme"
		scheme, err := repos.Schemes().GetByID(ctx, userID, schemeID)
		switch {
		case err == nil:
			schemeName = scheme.Name
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		subAccountID := subAccount.ID
		tx := &domain.Transaction{
			ID:           uuid.New(),
			UserID:       userID,
			Type:         domain.TransactionTypeWithdrawal,
			Amount:       amount,
			SchemeID:     &schemeID,
			SubAccountID: &subAccountID,
			Description:  "Withdrawal from " + schemeName,
			Date:         now,
		}
		if err := s.record(ctx, repos, tx); err != nil {
			return err
		}

		result = &WithdrawResult{
			MainBalance:   account.Balance,
			SchemeBalance: subAccount.Balance,
			TransactionID: tx.ID,
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "withdraw", err,
			"user_id", userID, "scheme_id", schemeID, "amount", amount.String())
		return nil, err
	}

	return result, nil
}

// record validates and appends one ledger row
func (s *FundsService) record(ctx context.Context, repos domain.Repositories, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid ledger row: %w", err)
	}
	if err := repos.Transactions().Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// logFailure logs server-class failures with enough context to diagnose them.
// Client errors are the caller's to report.
func (s *FundsService) logFailure(ctx context.Context, op string, err error, attrs ...any) {
	if domain.IsClientError(err) {
		s.Logger.DebugContext(ctx, op+" rejected", append(attrs, "error", err)...)
		return
	}
	s.Logger.ErrorContext(ctx, op+" failed", append(attrs, "operation", op, "error", err)...)
}

func splitDescription(rr rules.ResolvedRule) string {
	if rr.Rule.Type == domain.SplitTypeFixedAmount {
		return fmt.Sprintf("Split to %s (fixed %s)", rr.Scheme.Name, rr.Rule.Value.StringFixed(domain.CurrencyPlaces))
	}
	return fmt.Sprintf("Split to %s (%s%%)", rr.Scheme.Name, rr.Rule.Value.String())
}
