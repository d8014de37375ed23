package scheme

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/savings-splitter/internal/adapter/repository/memory"
	"github.com/simaogato/savings-splitter/internal/domain"
)

func setup(t *testing.T) (*memory.Store, *SchemeService, uuid.UUID) {
	t.Helper()
	store := memory.NewStore(time.Second)
	userID := uuid.New()
	err := store.RunInTx(context.Background(), userID, func(ctx context.Context, repos domain.Repositories) error {
		return repos.Accounts().Create(ctx, &domain.Account{ID: uuid.New(), UserID: userID})
	})
	require.NoError(t, err)
	return store, NewSchemeService(store, nil), userID
}

func TestCreateScheme_CreatesSubAccount(t *testing.T) {
	ctx := context.Background()
	_, service, userID := setup(t)

	created, err := service.CreateScheme(ctx, userID, CreateSchemeInput{
		Name:         "  Vacation ",
		Description:  "Trip to Lisbon",
		TargetAmount: decimal.NewFromInt(2000),
	})
	require.NoError(t, err)

	assert.Equal(t, "Vacation", created.Scheme.Name)
	assert.True(t, created.Scheme.IsActive)
	require.NotNil(t, created.SubAccount)
	assert.Equal(t, created.Scheme.ID, created.SubAccount.SchemeID)
	assert.Equal(t, "Vacation", created.SubAccount.Name)
	assert.True(t, created.Balance().IsZero())

	got, err := service.GetScheme(ctx, userID, created.Scheme.ID)
	require.NoError(t, err)
	assert.Equal(t, created.SubAccount.ID, got.SubAccount.ID)
}

func TestCreateScheme_Validation(t *testing.T) {
	ctx := context.Background()
	_, service, userID := setup(t)

	_, err := service.CreateScheme(ctx, userID, CreateSchemeInput{Name: "Vacation"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  uuid.UUID
		input   CreateSchemeInput
		wantErr error
		errMsg  string
	}{
		{"blank name", userID, CreateSchemeInput{Name: "   "}, domain.ErrValidation, "scheme name is required"},
		{"duplicate name", userID, CreateSchemeInput{Name: "vacation"}, domain.ErrValidation, "already have a scheme"},
		{"negative target", userID, CreateSchemeInput{Name: "Car", TargetAmount: decimal.NewFromInt(-1)}, domain.ErrValidation, "cannot be negative"},
		{"no main account", uuid.New(), CreateSchemeInput{Name: "Car"}, domain.ErrNotFound, "main account not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateScheme(ctx, tt.userID, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestUpdateScheme_RenameMirrorsSubAccount(t *testing.T) {
	ctx := context.Background()
	_, service, userID := setup(t)

	created, err := service.CreateScheme(ctx, userID, CreateSchemeInput{Name: "Vacation"})
	require.NoError(t, err)

	name := "Holiday"
	target := decimal.NewFromInt(500)
	inactive := false
	updated, err := service.UpdateScheme(ctx, userID, created.Scheme.ID, UpdateSchemeInput{
		Name:         &name,
		TargetAmount: &target,
		IsActive:     &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Holiday", updated.Scheme.Name)
	assert.False(t, updated.Scheme.IsActive)
	assert.True(t, updated.Scheme.TargetAmount.Equal(target))

	got, err := service.GetScheme(ctx, userID, created.Scheme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Holiday", got.SubAccount.Name)
}

func TestUpdateScheme_RejectsDuplicateNameAndUnknownScheme(t *testing.T) {
	ctx := context.Background()
	_, service, userID := setup(t)

	_, err := service.CreateScheme(ctx, userID, CreateSchemeInput{Name: "Vacation"})
	require.NoError(t, err)
	car, err := service.CreateScheme(ctx, userID, CreateSchemeInput{Name: "Car"})
	require.NoError(t, err)

	name := "Vacation"
	_, err = service.UpdateScheme(ctx, userID, car.Scheme.ID, UpdateSchemeInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.UpdateScheme(ctx, userID, uuid.New(), UpdateSchemeInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteScheme_Cascades(t *testing.T) {
	ctx := context.Background()
	store, service, userID := setup(t)

	created, err := service.CreateScheme(ctx, userID, CreateSchemeInput{Name: "Vacation"})
	require.NoError(t, err)
	schemeID := created.Scheme.ID
	subAccountID := created.SubAccount.ID

	err = store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		if err := repos.SplitRules().Create(ctx, &domain.SplitRule{
			ID: uuid.New(), UserID: userID, SchemeID: schemeID, Type: domain.SplitTypePercentage,
			Value: decimal.NewFromInt(30), IsActive: true,
		}); err != nil {
			return err
		}
		if err := repos.Transactions().Create(ctx, &domain.Transaction{
			ID: uuid.New(), UserID: userID, Type: domain.TransactionTypeDeposit, Amount: decimal.NewFromInt(100),
		}); err != nil {
			return err
		}
		return repos.Transactions().Create(ctx, &domain.Transaction{
			ID: uuid.New(), UserID: userID, Type: domain.TransactionTypeDeposit, Amount: decimal.NewFromInt(30),
			SchemeID: &schemeID, SubAccountID: &subAccountID,
		})
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteScheme(ctx, userID, schemeID))

	err = store.View(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		_, err := repos.SubAccounts().GetBySchemeID(ctx, userID, schemeID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = repos.SplitRules().GetBySchemeID(ctx, userID, schemeID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		count, err := repos.Transactions().Count(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "only the main-account leg survives")
		return nil
	})
	require.NoError(t, err)

	_, err = service.GetScheme(ctx, userID, schemeID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, service.DeleteScheme(ctx, userID, schemeID), domain.ErrNotFound)
}
