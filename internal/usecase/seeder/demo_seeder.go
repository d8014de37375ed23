package seeder

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

// DemoScheme defines a scheme and its percentage rule to be seeded
type DemoScheme struct {
	Name       string
	Percentage decimal.Decimal
}

// DemoSchemes is the demo rule set: Vacation 30%, Emergency 20%
var DemoSchemes = []DemoScheme{
	{Name: "Vacation", Percentage: decimal.NewFromInt(30)},
	{Name: "Emergency", Percentage: decimal.NewFromInt(20)},
}

// SchemeID derives the stable id of a demo scheme for userID, so reseeding
// finds the same records.
func SchemeID(userID uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(userID, []byte("scheme/"+name))
}

// DemoSeeder handles seeding of a demo user
type DemoSeeder struct {
	store  domain.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(store domain.Store, logger *slog.Logger) *DemoSeeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &DemoSeeder{store: store, logger: logger, now: time.Now}
}

// Seed ensures userID has a main account and every demo scheme with its
// sub-account and rule. Records that already exist are left alone.
func (s *DemoSeeder) Seed(ctx context.Context, userID uuid.UUID) error {
	created := 0
	err := s.store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		now := s.now().UTC()

		account, err := repos.Accounts().GetByUserID(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			account = &domain.Account{ID: uuid.New(), UserID: userID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
			if err := repos.Accounts().Create(ctx, account); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, demo := range DemoSchemes {
			schemeID := SchemeID(userID, demo.Name)

			// Try to get the scheme by ID
			_, err := repos.Schemes().GetByID(ctx, userID, schemeID)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}

			if err := s.seedScheme(ctx, repos, account, schemeID, demo, now); err != nil {
				return fmt.Errorf("failed to seed scheme %s: %w", demo.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "demo user seeded", "user_id", userID, "schemes_created", created)
	return nil
}

func (s *DemoSeeder) seedScheme(ctx context.Context, repos domain.Repositories, account *domain.Account, schemeID uuid.UUID, demo DemoScheme, now time.Time) error {
	scheme := &domain.SavingsScheme{
		ID:        schemeID,
		UserID:    account.UserID,
		Name:      demo.Name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := scheme.Validate(); err != nil {
		return err
	}
	if err := repos.Schemes().Create(ctx, scheme); err != nil {
		return err
	}

	if err := repos.SubAccounts().Create(ctx, &domain.SubAccount{
		ID:        uuid.New(),
		UserID:    account.UserID,
		AccountID: account.ID,
		SchemeID:  schemeID,
		Name:      demo.Name,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return err
	}

	rule := &domain.SplitRule{
		ID:        uuid.New(),
		UserID:    account.UserID,
		SchemeID:  schemeID,
		Type:      domain.SplitTypePercentage,
		Value:     demo.Percentage,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The user may have rules of their own; never push them past the ceiling
	existing, err := repos.SplitRules().List(ctx, account.UserID, true)
	if err != nil {
		return err
	}
	if domain.ActivePercentageTotal(existing, uuid.Nil).Add(rule.Value).GreaterThan(domain.MaxPercentageTotal) {
		s.logger.WarnContext(ctx, "demo rule skipped, it would exceed 100%",
			"user_id", account.UserID, "scheme", demo.Name)
		return nil
	}
	return repos.SplitRules().Create(ctx, rule)
}
