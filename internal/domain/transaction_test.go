package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	userID := uuid.New()
	schemeID := uuid.New()
	subAccountID := uuid.New()

	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "Main account deposit leg without scheme should pass",
			tx: Transaction{
				ID:          uuid.New(),
				UserID:      userID,
				Type:        TransactionTypeDeposit,
				Amount:      decimal.NewFromInt(1000),
				Description: "Initial deposit to main account",
				Date:        time.Now(),
			},
			wantErr: false,
		},
		{
			name: "Split deposit leg with scheme and sub-account should pass",
			tx: Transaction{
				ID:           uuid.New(),
				UserID:       userID,
				Type:         TransactionTypeDeposit,
				Amount:       decimal.NewFromInt(300),
				SchemeID:     &schemeID,
				SubAccountID: &subAccountID,
				Date:         time.Now(),
			},
			wantErr: false,
		},
		{
			name: "Withdrawal with scheme should pass",
			tx: Transaction{
				ID:           uuid.New(),
				UserID:       userID,
				Type:         TransactionTypeWithdrawal,
				Amount:       decimal.NewFromInt(50),
				SchemeID:     &schemeID,
				SubAccountID: &subAccountID,
				Date:         time.Now(),
			},
			wantErr: false,
		},
		{
			name: "Withdrawal without scheme should fail",
			tx: Transaction{
				ID:     uuid.New(),
				UserID: userID,
				Type:   TransactionTypeWithdrawal,
				Amount: decimal.NewFromInt(50),
				Date:   time.Now(),
			},
			wantErr: true,
			errMsg:  "withdrawal must reference a scheme",
		},
		{
			name: "Scheme without sub-account should fail",
			tx: Transaction{
				ID:       uuid.New(),
				UserID:   userID,
				Type:     TransactionTypeDeposit,
				Amount:   decimal.NewFromInt(10),
				SchemeID: &schemeID,
				Date:     time.Now(),
			},
			wantErr: true,
			errMsg:  "both scheme and sub-account",
		},
		{
			name: "Zero amount should fail",
			tx: Transaction{
				ID:     uuid.New(),
				UserID: userID,
				Type:   TransactionTypeDeposit,
				Amount: decimal.Zero,
				Date:   time.Now(),
			},
			wantErr: true,
			errMsg:  "transaction amount must be positive",
		},
		{
			name: "Negative amount should fail",
			tx: Transaction{
				ID:     uuid.New(),
				UserID: userID,
				Type:   TransactionTypeDeposit,
				Amount: decimal.NewFromInt(-10),
				Date:   time.Now(),
			},
			wantErr: true,
			errMsg:  "transaction amount must be positive",
		},
		{
			name: "Unknown type should fail",
			tx: Transaction{
				ID:     uuid.New(),
				UserID: userID,
				Type:   TransactionType("transfer"),
				Amount: decimal.NewFromInt(10),
				Date:   time.Now(),
			},
			wantErr: true,
			errMsg:  "transaction type must be deposit or withdrawal",
		},
		{
			name: "Missing user should fail",
			tx: Transaction{
				ID:     uuid.New(),
				Type:   TransactionTypeDeposit,
				Amount: decimal.NewFromInt(10),
			},
			wantErr: true,
			errMsg:  "transaction must belong to a user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
