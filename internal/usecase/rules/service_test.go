package rules

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/savings-splitter/internal/adapter/repository/memory"
	"github.com/simaogato/savings-splitter/internal/domain"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// seedScheme creates a scheme with its sub-account for userID
func seedScheme(t *testing.T, store domain.Store, userID uuid.UUID, name string) *domain.SavingsScheme {
	t.Helper()
	scheme := &domain.SavingsScheme{ID: uuid.New(), UserID: userID, Name: name, IsActive: true}
	err := store.RunInTx(context.Background(), userID, func(ctx context.Context, repos domain.Repositories) error {
		if err := repos.Schemes().Create(ctx, scheme); err != nil {
			return err
		}
		return repos.SubAccounts().Create(ctx, &domain.SubAccount{
			ID: uuid.New(), UserID: userID, AccountID: uuid.New(), SchemeID: scheme.ID, Name: name,
		})
	})
	require.NoError(t, err)
	return scheme
}

func TestRuleInput_Normalize(t *testing.T) {
	schemeID := uuid.New()
	inactive := false

	tests := []struct {
		name      string
		input     RuleInput
		wantType  domain.SplitType
		wantValue string
		active    bool
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "value defaults to percentage",
			input:     RuleInput{SchemeID: schemeID, Value: dec("30")},
			wantType:  domain.SplitTypePercentage,
			wantValue: "30",
			active:    true,
		},
		{
			name:      "legacy percentage field",
			input:     RuleInput{SchemeID: schemeID, Percentage: dec("20")},
			wantType:  domain.SplitTypePercentage,
			wantValue: "20",
			active:    true,
		},
		{
			name:      "matching value and percentage",
			input:     RuleInput{SchemeID: schemeID, SplitType: "percent", Value: dec("15"), Percentage: dec("15.00")},
			wantType:  domain.SplitTypePercentage,
			wantValue: "15",
			active:    true,
		},
		{
			name:      "fixed alias and explicit inactive",
			input:     RuleInput{SchemeID: schemeID, SplitType: "fixed", Value: dec("50"), IsActive: &inactive},
			wantType:  domain.SplitTypeFixedAmount,
			wantValue: "50",
			active:    false,
		},
		{
			name:    "conflicting value and percentage",
			input:   RuleInput{SchemeID: schemeID, Value: dec("10"), Percentage: dec("20")},
			wantErr: true,
			errMsg:  "disagree",
		},
		{
			name:    "percentage on fixed rule",
			input:   RuleInput{SchemeID: schemeID, SplitType: "fixed_amount", Percentage: dec("20")},
			wantErr: true,
			errMsg:  "percentage only applies",
		},
		{
			name:    "missing value",
			input:   RuleInput{SchemeID: schemeID},
			wantErr: true,
			errMsg:  "value is required",
		},
		{
			name:    "missing scheme",
			input:   RuleInput{Value: dec("10")},
			wantErr: true,
			errMsg:  "scheme ID is required",
		},
		{
			name:    "unknown split type",
			input:   RuleInput{SchemeID: schemeID, SplitType: "ratio", Value: dec("10")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Normalize()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.True(t, got.Value.Equal(decimal.RequireFromString(tt.wantValue)))
			assert.Equal(t, tt.active, got.IsActive)
			assert.Equal(t, schemeID, got.SchemeID)
		})
	}
}

func TestCreateOrUpdateRule_EnforcesPercentageCeiling(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	service := NewRuleService(store, nil)
	userID := uuid.New()

	a := seedScheme(t, store, userID, "A")
	b := seedScheme(t, store, userID, "B")
	c := seedScheme(t, store, userID, "C")

	_, created, err := service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: a.ID, Value: dec("50")})
	require.NoError(t, err)
	assert.True(t, created)
	_, _, err = service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: b.ID, Value: dec("30")})
	require.NoError(t, err)

	// 80% existing + 25% is rejected
	_, _, err = service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: c.ID, Value: dec("25")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "total splitting percentage cannot exceed 100% (current total: 80%)")

	// 80% existing + 20% is accepted
	rule, created, err := service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: c.ID, Value: dec("20")})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, rule.Value.Equal(decimal.NewFromInt(20)))

	list, err := service.ListRules(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list.Rules, 3)
	assert.True(t, list.ActivePercentage.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []string{"A", "B", "C"},
		[]string{list.Rules[0].SchemeName, list.Rules[1].SchemeName, list.Rules[2].SchemeName})
}

func TestCreateOrUpdateRule_UpdateExcludesOwnValue(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	service := NewRuleService(store, nil)
	userID := uuid.New()

	a := seedScheme(t, store, userID, "A")
	b := seedScheme(t, store, userID, "B")

	first, _, err := service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: a.ID, Value: dec("60")})
	require.NoError(t, err)
	_, _, err = service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: b.ID, Value: dec("40")})
	require.NoError(t, err)

	// Lowering A is fine even though the set is at 100%
	updated, created, err := service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: a.ID, Value: dec("55")})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, updated.ID)

	// Raising A past the ceiling is not
	_, _, err = service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: a.ID, Value: dec("61")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := service.GetRuleByScheme(ctx, userID, a.ID)
	require.NoError(t, err)
	assert.True(t, stored.Value.Equal(decimal.NewFromInt(55)), "rejected update must not persist")
}

func TestCreateOrUpdateRule_InactiveAndFixedRulesSkipCeiling(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	service := NewRuleService(store, nil)
	userID := uuid.New()
	inactive := false

	a := seedScheme(t, store, userID, "A")
	b := seedScheme(t, store, userID, "B")
	c := seedScheme(t, store, userID, "C")

	_, _, err := service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: a.ID, Value: dec("100")})
	require.NoError(t, err)
	_, _, err = service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: b.ID, Value: dec("50"), IsActive: &inactive})
	require.NoError(t, err)
	_, _, err = service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: c.ID, SplitType: "fixed", Value: dec("250")})
	require.NoError(t, err)

	// Re-activating B without lowering A breaks the ceiling
	_, _, err = service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: b.ID, Value: dec("50")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateOrUpdateRule_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	service := NewRuleService(store, nil)
	userID := uuid.New()
	a := seedScheme(t, store, userID, "A")

	tests := []struct {
		name    string
		input   RuleInput
		wantErr error
	}{
		{"percentage above 100", RuleInput{SchemeID: a.ID, Value: dec("100.5")}, domain.ErrValidation},
		{"negative percentage", RuleInput{SchemeID: a.ID, Value: dec("-1")}, domain.ErrValidation},
		{"negative fixed amount", RuleInput{SchemeID: a.ID, SplitType: "fixed", Value: dec("-5")}, domain.ErrValidation},
		{"unknown scheme", RuleInput{SchemeID: uuid.New(), Value: dec("10")}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.CreateOrUpdateRule(ctx, userID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeleteRule(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	service := NewRuleService(store, nil)
	userID := uuid.New()
	a := seedScheme(t, store, userID, "A")

	rule, _, err := service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: a.ID, Value: dec("10")})
	require.NoError(t, err)

	require.NoError(t, service.DeleteRule(ctx, userID, rule.ID))
	assert.ErrorIs(t, service.DeleteRule(ctx, userID, rule.ID), domain.ErrNotFound)

	list, err := service.ListRules(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list.Rules)
	assert.True(t, list.ActivePercentage.IsZero())
}

func TestResolver_SkipsDanglingRules(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	service := NewRuleService(store, nil)
	userID := uuid.New()

	a := seedScheme(t, store, userID, "A")
	b := seedScheme(t, store, userID, "B")
	_, _, err := service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: a.ID, Value: dec("30")})
	require.NoError(t, err)
	_, _, err = service.CreateOrUpdateRule(ctx, userID, RuleInput{SchemeID: b.ID, Value: dec("20")})
	require.NoError(t, err)

	// Drop A's scheme but leave its rule behind
	err = store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		return repos.Schemes().Delete(ctx, userID, a.ID)
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	resolver := NewResolver(slog.New(slog.NewTextHandler(&buf, nil)))

	var resolved []ResolvedRule
	err = store.View(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		resolved, err = resolver.Resolve(ctx, repos, userID)
		return err
	})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, b.ID, resolved[0].Scheme.ID)
	assert.True(t, PercentageTotal(resolved).Equal(decimal.NewFromInt(20)))
	assert.Contains(t, buf.String(), "skipping split rule with missing scheme")
}
