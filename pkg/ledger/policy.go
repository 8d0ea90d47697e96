package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

// MeteredFunc is the external invocation a policy run wraps. It returns the
// actual credit cost derived from the generator's reported resource usage.
type MeteredFunc func(ctx context.Context) (int, error)

// MeteredResult reports the accounting outcome of one metered run.
type MeteredResult struct {
	State    models.CreditLedgerState
	Warnings []string
}

// Policy runs the estimate/check/deduct/warn state machine around any
// metered operation. Credits are reserved at the estimate before the
// external call; a failed generation refunds the reservation and never
// costs credits; a failed settlement after success never revokes the
// delivered artifact.
type Policy struct {
	store   Store
	pricing *Pricing
	journal *Journal
	logger  *slog.Logger
}

func NewPolicy(store Store, pricing *Pricing, journal *Journal, logger *slog.Logger) *Policy {
	if pricing == nil {
		pricing = DefaultPricing()
	}

	if journal == nil {
		journal = NewJournal()
	}

	return &Policy{
		store:   store,
		pricing: pricing,
		journal: journal,
		logger:  logger,
	}
}

func (p *Policy) Pricing() *Pricing {
	return p.pricing
}

func (p *Policy) Journal() *Journal {
	return p.journal
}

// HasEnoughCredits is a read-only eligibility check. The authoritative gate
// is the atomic Reserve inside RunMetered; this exists for UI pre-checks.
func (p *Policy) HasEnoughCredits(ctx context.Context, estimatedCost int) (bool, error) {
	balance, err := p.store.Balance(ctx)
	if err != nil {
		return false, err
	}

	return balance.Credits >= estimatedCost, nil
}

// RunMetered executes invoke under the credit policy. The returned result is
// non-nil whenever invoke ran, even if settlement failed.
func (p *Policy) RunMetered(ctx context.Context, estimatedCost int, meta DeductionMetadata, invoke MeteredFunc) (*MeteredResult, error) {
	result := &MeteredResult{
		State: models.CreditLedgerState{
			EstimatedCost:   estimatedCost,
			DeductionStatus: models.DeductionStatusPending,
		},
	}

	reserved, err := p.store.Reserve(ctx, estimatedCost)
	if err != nil {
		return nil, fmt.Errorf("credit reservation: %w", err)
	}

	if !reserved {
		return nil, ErrInsufficientCredits
	}

	actualCost, err := invoke(ctx)
	if err != nil {
		// A failed generation never costs credits.
		if refundErr := p.store.Refund(ctx, estimatedCost); refundErr != nil {
			p.logger.ErrorContext(ctx, "Failed to refund reservation after generation failure",
				"amount", estimatedCost, "error", refundErr)
			p.journal.Record(JournalEntry{
				Amount:   -estimatedCost,
				Metadata: meta,
				Reason:   "refund after generation failure: " + refundErr.Error(),
			})
		}

		return nil, err
	}

	result.State.ActualCost = actualCost
	p.settle(ctx, result, estimatedCost, actualCost, meta)
	p.warnLowBalance(ctx, result)

	return result, nil
}

// RunBatch executes invoke under the flat-rate batch policy: one batch
// credit per run regardless of artifact count, checked up front and spent
// only after the run succeeds.
func (p *Policy) RunBatch(ctx context.Context, meta DeductionMetadata, invoke func(ctx context.Context) error) (*MeteredResult, error) {
	balance, err := p.store.Balance(ctx)
	if err != nil {
		return nil, fmt.Errorf("batch balance check: %w", err)
	}

	if balance.BatchCredits < 1 {
		return nil, ErrInsufficientBatchCredits
	}

	result := &MeteredResult{
		State: models.CreditLedgerState{
			BatchBalance:    balance.BatchCredits,
			EstimatedCost:   1,
			DeductionStatus: models.DeductionStatusPending,
		},
	}

	if err := invoke(ctx); err != nil {
		return nil, err
	}

	result.State.ActualCost = 1

	if err := p.store.DeductBatch(ctx, meta); err != nil {
		result.State.DeductionStatus = models.DeductionStatusFailed
		accountingErr := &AccountingError{Op: "batch deduction", Amount: 1, Err: err}
		result.Warnings = append(result.Warnings, accountingErr.Error())
		p.journal.Record(JournalEntry{Amount: 1, Metadata: meta, Reason: err.Error()})
		p.logger.WarnContext(ctx, "Batch deduction failed after successful run", "error", err)

		return result, nil
	}

	result.State.DeductionStatus = models.DeductionStatusSuccess

	return result, nil
}

// settle charges the actual cost: the estimate is already reserved, so only
// the difference moves.
func (p *Policy) settle(ctx context.Context, result *MeteredResult, estimatedCost, actualCost int, meta DeductionMetadata) {
	delta := actualCost - estimatedCost

	var err error

	switch {
	case delta > 0:
		err = p.store.Deduct(ctx, delta, meta)
	case delta < 0:
		err = p.store.Refund(ctx, -delta)
	}

	if err != nil {
		result.State.DeductionStatus = models.DeductionStatusFailed
		accountingErr := &AccountingError{Op: "settlement", Amount: delta, Err: err}
		result.Warnings = append(result.Warnings, accountingErr.Error())
		p.journal.Record(JournalEntry{Amount: delta, Metadata: meta, Reason: err.Error()})
		p.logger.WarnContext(ctx, "Credit settlement failed after successful generation",
			"delta", delta, "error", err)

		return
	}

	result.State.DeductionStatus = models.DeductionStatusSuccess
}

func (p *Policy) warnLowBalance(ctx context.Context, result *MeteredResult) {
	balance, err := p.store.Balance(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "Could not read balance for low-balance check", "error", err)

		return
	}

	result.State.Balance = balance.Credits
	result.State.BatchBalance = balance.BatchCredits

	if balance.Credits > 0 && balance.Credits < p.pricing.LowBalanceThreshold {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Running low on credits: %d remaining", balance.Credits))
	}
}
