package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
)

// MockLedgerStore is a mock implementation of ledger.Store.
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) Balance(ctx context.Context) (ledger.CreditBalance, error) {
	args := m.Called(ctx)

	return args.Get(0).(ledger.CreditBalance), args.Error(1)
}

func (m *MockLedgerStore) Reserve(ctx context.Context, amount int) (bool, error) {
	args := m.Called(ctx, amount)

	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerStore) Deduct(ctx context.Context, amount int, meta ledger.DeductionMetadata) error {
	args := m.Called(ctx, amount, meta)

	return args.Error(0)
}

func (m *MockLedgerStore) DeductBatch(ctx context.Context, meta ledger.DeductionMetadata) error {
	args := m.Called(ctx, meta)

	return args.Error(0)
}

func (m *MockLedgerStore) Refund(ctx context.Context, amount int) error {
	args := m.Called(ctx, amount)

	return args.Error(0)
}

func (m *MockLedgerStore) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
