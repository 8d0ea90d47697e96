// Package ledger provides credit accounting for metered generation runs.
package ledger

import (
	"context"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

// CreditBalance is a point-in-time snapshot of both currencies.
type CreditBalance struct {
	Credits      int `json:"credits"`
	BatchCredits int `json:"batch_credits"`
}

// DeductionMetadata travels with every deduction for later reconciliation.
type DeductionMetadata struct {
	RequestID string                `json:"request_id"`
	Mode      models.GenerationMode `json:"mode"`
	Platform  string                `json:"platform"`
	Reason    string                `json:"reason"`
}

// Store holds the authoritative balance for one account. Reserve and
// DeductBatch must be atomic at the store boundary: concurrent requests
// against a balance that covers only one of them must not both succeed.
// The pipeline itself performs no locking.
type Store interface {
	Balance(ctx context.Context) (CreditBalance, error)

	// Reserve atomically checks and decrements the credit balance by amount.
	// It returns false, without decrementing, when the balance is short.
	Reserve(ctx context.Context, amount int) (bool, error)

	// Deduct unconditionally decrements credits; used to settle the gap
	// between estimated and actual cost after a successful generation.
	Deduct(ctx context.Context, amount int, meta DeductionMetadata) error

	// DeductBatch atomically spends one flat batch credit.
	DeductBatch(ctx context.Context, meta DeductionMetadata) error

	// Refund returns credits reserved for a generation that never completed,
	// or an estimate surplus.
	Refund(ctx context.Context, amount int) error

	Close(ctx context.Context) error
}
