package ledger

import (
	"context"
	"sync"
)

// Memory is an in-process Store for tests and single-tenant development.
type Memory struct {
	mu           sync.Mutex
	credits      int
	batchCredits int
}

func NewMemory(credits, batchCredits int) *Memory {
	return &Memory{credits: credits, batchCredits: batchCredits}
}

func (m *Memory) Balance(_ context.Context) (CreditBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return CreditBalance{Credits: m.credits, BatchCredits: m.batchCredits}, nil
}

func (m *Memory) Reserve(_ context.Context, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.credits < amount {
		return false, nil
	}

	m.credits -= amount

	return true, nil
}

func (m *Memory) Deduct(_ context.Context, amount int, _ DeductionMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.credits -= amount

	return nil
}

func (m *Memory) DeductBatch(_ context.Context, _ DeductionMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.batchCredits < 1 {
		return ErrInsufficientBatchCredits
	}

	m.batchCredits--

	return nil
}

func (m *Memory) Refund(_ context.Context, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.credits += amount

	return nil
}

func (m *Memory) Close(_ context.Context) error {
	return nil
}
