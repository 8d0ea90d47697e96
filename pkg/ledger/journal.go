package ledger

import (
	"sync"
	"time"
)

// JournalEntry records one failed deduction awaiting manual reconciliation.
type JournalEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Amount    int               `json:"amount"`
	Metadata  DeductionMetadata `json:"metadata"`
	Reason    string            `json:"reason"`
}

// Journal accumulates failed deductions. Entries are never retried by the
// pipeline; the reconciliation sweep reports them for manual follow-up.
type Journal struct {
	mu      sync.Mutex
	entries []JournalEntry
}

func NewJournal() *Journal {
	return &Journal{entries: []JournalEntry{}}
}

func (j *Journal) Record(entry JournalEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	j.entries = append(j.entries, entry)
}

// Outstanding returns a copy of all unreconciled entries.
func (j *Journal) Outstanding() []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]JournalEntry, len(j.entries))
	copy(out, j.entries)

	return out
}

// Resolve drops the oldest n entries after manual reconciliation.
func (j *Journal) Resolve(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if n > len(j.entries) {
		n = len(j.entries)
	}

	j.entries = j.entries[n:]
}
