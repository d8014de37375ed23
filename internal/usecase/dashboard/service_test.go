package dashboard

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
	"github.com/simaogato/savings-splitter/internal/usecase/account"
	"github.com/simaogato/savings-splitter/internal/usecase/funds"
	"github.com/simaogato/savings-splitter/internal/usecase/rules"
	"github.com/simaogato/savings-splitter/internal/usecase/scheme"
)

type world struct {
	store     *memory.Store
	dashboard *DashboardService
	funds     *funds.FundsService
	userID    uuid.UUID
	vacation  uuid.UUID
	emergency uuid.UUID
}

// newWorld builds the demo user: Vacation 30% (target 1000) and Emergency 20%
func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	userID := uuid.New()

	_, _, err := account.NewAccountService(store, nil).OpenAccount(ctx, userID)
	require.NoError(t, err)

	schemes := scheme.NewSchemeService(store, nil)
	vacation, err := schemes.CreateScheme(ctx, userID, scheme.CreateSchemeInput{Name: "Vacation", TargetAmount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	emergency, err := schemes.CreateScheme(ctx, userID, scheme.CreateSchemeInput{Name: "Emergency"})
	require.NoError(t, err)

	ruleService := rules.NewRuleService(store, nil)
	for _, in := range []struct {
		id  uuid.UUID
		pct int64
	}{{vacation.Scheme.ID, 30}, {emergency.Scheme.ID, 20}} {
		v := decimal.NewFromInt(in.pct)
		_, _, err := ruleService.CreateOrUpdateRule(ctx, userID, rules.RuleInput{SchemeID: in.id, Value: &v})
		require.NoError(t, err)
	}

	return &world{
		store:     store,
		dashboard: NewDashboardService(store),
		funds:     funds.NewFundsService(store, nil, nil),
		userID:    userID,
		vacation:  vacation.Scheme.ID,
		emergency: emergency.Scheme.ID,
	}
}

func TestGetMainBalance(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	_, err := w.funds.Deposit(ctx, w.userID, decimal.NewFromInt(1000))
	require.NoError(t, err)

	balance, err := w.dashboard.GetMainBalance(ctx, w.userID)
	require.NoError(t, err)
	assert.True(t, balance.Main.Equal(decimal.NewFromInt(1000)))
	assert.True(t, balance.Schemes.Equal(decimal.NewFromInt(500)))

	_, err = w.dashboard.GetMainBalance(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSchemes_JoinsLiveBalances(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	_, err := w.funds.Deposit(ctx, w.userID, decimal.NewFromInt(1000))
	require.NoError(t, err)

	schemes, err := w.dashboard.ListSchemes(ctx, w.userID)
	require.NoError(t, err)
	require.Len(t, schemes, 2)

	assert.Equal(t, "Vacation", schemes[0].Scheme.Name)
	assert.True(t, schemes[0].Balance().Equal(decimal.NewFromInt(300)))
	assert.True(t, schemes[0].Progress().Equal(decimal.NewFromInt(30)))

	assert.Equal(t, "Emergency", schemes[1].Scheme.Name)
	assert.True(t, schemes[1].Balance().Equal(decimal.NewFromInt(200)))
	assert.True(t, schemes[1].Progress().IsZero(), "no target means no progress")
}

func TestListTransactions_NewestFirstWithSchemeNames(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	w.funds.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	_, err := w.funds.Deposit(ctx, w.userID, decimal.NewFromInt(1000))
	require.NoError(t, err)
	_, err = w.funds.Withdraw(ctx, w.userID, w.vacation, decimal.NewFromInt(50))
	require.NoError(t, err)

	page, err := w.dashboard.ListTransactions(ctx, w.userID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, DefaultPageSize, page.Limit)
	require.Len(t, page.Transactions, 4)

	newest := page.Transactions[0]
	assert.Equal(t, domain.TransactionTypeWithdrawal, newest.Type)
	assert.Equal(t, "Vacation", newest.SchemeName)

	var mainLeg *domain.TransactionView
	for i := range page.Transactions {
		if !page.Transactions[i].IsSchemeLeg() {
			mainLeg = &page.Transactions[i]
		}
	}
	require.NotNil(t, mainLeg)
	assert.Empty(t, mainLeg.SchemeName)
}

func TestListTransactions_Pagination(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	for i := 0; i < 3; i++ {
		_, err := w.funds.Deposit(ctx, w.userID, decimal.NewFromInt(10))
		require.NoError(t, err)
	}

	page, err := w.dashboard.ListTransactions(ctx, w.userID, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 9, page.Total)
	assert.Len(t, page.Transactions, 4)

	page, err = w.dashboard.ListTransactions(ctx, w.userID, 4, 8)
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 1)

	page, err = w.dashboard.ListTransactions(ctx, w.userID, MaxPageSize+1, 0)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Limit)

	_, err = w.dashboard.ListTransactions(ctx, w.userID, 10, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
