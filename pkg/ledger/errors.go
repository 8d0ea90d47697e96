package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientCredits blocks a metered run before any external call.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInsufficientBatchCredits blocks a batch run before planning starts.
	ErrInsufficientBatchCredits = errors.New("insufficient batch credits")

	// ErrAccountNotFound indicates the store has no row for the account.
	ErrAccountNotFound = errors.New("ledger account not found")
)

// AccountingError marks a post-success deduction failure. It is explicitly
// non-fatal: the generated artifact is retained and the failure is surfaced
// as a warning for manual reconciliation, never retried automatically.
type AccountingError struct {
	Op     string
	Amount int
	Err    error
}

func (e *AccountingError) Error() string {
	return fmt.Sprintf("%s failed for %d credits: %v", e.Op, e.Amount, e.Err)
}

func (e *AccountingError) Unwrap() error {
	return e.Err
}

// IsAccountingError checks whether an error is a non-fatal accounting failure.
func IsAccountingError(err error) bool {
	var ae *AccountingError

	return errors.As(err, &ae)
}
