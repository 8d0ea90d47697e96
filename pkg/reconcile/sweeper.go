// Package reconcile periodically reports unresolved accounting entries.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
)

const defaultSchedule = "*/15 * * * *"

// Sweeper logs an audit report of outstanding journal entries on a schedule.
// It is observation only: it never retries deductions and never writes the
// ledger. Someone on support resolves entries by hand after checking the
// provider's billing records.
type Sweeper struct {
	journal  *ledger.Journal
	logger   *slog.Logger
	cron     *cron.Cron
	schedule string
}

// NewSweeper creates a sweeper for the given journal. An empty schedule uses
// the 15-minute default.
func NewSweeper(journal *ledger.Journal, schedule string, logger *slog.Logger) (*Sweeper, error) {
	if schedule == "" {
		schedule = defaultSchedule
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule '%s': %w", schedule, err)
	}

	return &Sweeper{
		journal:  journal,
		logger:   logger.With("module", "reconcile"),
		schedule: schedule,
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.Report(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule reconcile sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Reconcile sweeper started", "schedule", s.schedule)

	return nil
}

func (s *Sweeper) Stop(_ context.Context) error {
	if s.cron != nil {
		s.cron.Stop()
		s.logger.Info("Reconcile sweeper stopped")
	}

	return nil
}

// Report logs every outstanding entry once. Safe to call directly; the cron
// schedule just automates it.
func (s *Sweeper) Report(ctx context.Context) {
	entries := s.journal.Outstanding()
	if len(entries) == 0 {
		s.logger.DebugContext(ctx, "No outstanding accounting entries")

		return
	}

	s.logger.WarnContext(ctx, "Outstanding accounting entries need manual reconciliation",
		"count", len(entries))

	for _, entry := range entries {
		s.logger.WarnContext(ctx, "Unreconciled ledger entry",
			"request_id", entry.Metadata.RequestID,
			"amount", entry.Amount,
			"reason", entry.Reason,
			"recorded_at", entry.Timestamp,
		)
	}
}
