package models

// DeductionStatus tracks the outcome of the post-generation credit deduction.
type DeductionStatus string

const (
	DeductionStatusPending DeductionStatus = "pending"
	DeductionStatusSuccess DeductionStatus = "success"
	DeductionStatusFailed  DeductionStatus = "failed"
)

// CreditLedgerState is the per-run accounting snapshot. Credits and batch
// credits are distinct currencies: batch credits are flat-rate and cover a
// whole multi-artifact run.
type CreditLedgerState struct {
	Balance         int             `json:"balance"`
	BatchBalance    int             `json:"batch_balance"`
	EstimatedCost   int             `json:"estimated_cost"`
	ActualCost      int             `json:"actual_cost"`
	DeductionStatus DeductionStatus `json:"deduction_status"`
}
