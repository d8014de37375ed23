package funds

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/simaogato/savings-splitter/internal/domain"
)

// MockStore is a mock implementation of domain.Store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) RunInTx(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos domain.Repositories) error) error {
	args := m.Called(ctx, userID, fn)
	return args.Error(0)
}

func (m *MockStore) View(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos domain.Repositories) error) error {
	args := m.Called(ctx, userID, fn)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) DeleteBySchemeID(ctx context.Context, userID, schemeID uuid.UUID) error {
	args := m.Called(ctx, userID, schemeID)
	return args.Error(0)
}

// faultyStore runs units on a real store but routes ledger writes to a mock
type faultyStore struct {
	domain.Store
	transactions domain.TransactionRepository
}

func (s *faultyStore) RunInTx(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return s.Store.RunInTx(ctx, userID, func(ctx context.Context, repos domain.Repositories) error {
		return fn(ctx, faultyRepositories{Repositories: repos, transactions: s.transactions})
	})
}

type faultyRepositories struct {
	domain.Repositories
	transactions domain.TransactionRepository
}

func (r faultyRepositories) Transactions() domain.TransactionRepository {
	return r.transactions
}
