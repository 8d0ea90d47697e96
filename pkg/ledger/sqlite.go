package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is a file-backed Store; conditional UPDATEs keep the
// check-and-decrement atomic at the database boundary.
type SQLite struct {
	db      *sql.DB
	account string
}

func NewSQLite(dbPath, account string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	s := &SQLite{db: db, account: account}
	if err := s.migrate(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		account TEXT PRIMARY KEY,
		credits INTEGER NOT NULL DEFAULT 0,
		batch_credits INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS deductions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account TEXT NOT NULL REFERENCES accounts(account),
		amount INTEGER NOT NULL,
		request_id TEXT,
		mode TEXT,
		platform TEXT,
		reason TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate ledger database: %w", err)
	}

	return nil
}

// EnsureAccount creates the account row with a starting balance when absent.
func (s *SQLite) EnsureAccount(ctx context.Context, credits, batchCredits int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO accounts (account, credits, batch_credits) VALUES (?, ?, ?)`,
		s.account, credits, batchCredits)
	if err != nil {
		return fmt.Errorf("ensure ledger account: %w", err)
	}

	return nil
}

func (s *SQLite) Balance(ctx context.Context) (CreditBalance, error) {
	var balance CreditBalance

	err := s.db.QueryRowContext(ctx,
		`SELECT credits, batch_credits FROM accounts WHERE account = ?`, s.account).
		Scan(&balance.Credits, &balance.BatchCredits)
	if err == sql.ErrNoRows {
		return CreditBalance{}, ErrAccountNotFound
	}

	if err != nil {
		return CreditBalance{}, fmt.Errorf("ledger balance: %w", err)
	}

	return balance, nil
}

func (s *SQLite) Reserve(ctx context.Context, amount int) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET credits = credits - ? WHERE account = ? AND credits >= ?`,
		amount, s.account, amount)
	if err != nil {
		return false, fmt.Errorf("ledger reserve: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ledger reserve: %w", err)
	}

	return affected == 1, nil
}

func (s *SQLite) Deduct(ctx context.Context, amount int, meta DeductionMetadata) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET credits = credits - ? WHERE account = ?`, amount, s.account)
	if err != nil {
		return fmt.Errorf("ledger deduct: %w", err)
	}

	s.recordDeduction(ctx, amount, meta)

	return nil
}

func (s *SQLite) DeductBatch(ctx context.Context, meta DeductionMetadata) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET batch_credits = batch_credits - 1 WHERE account = ? AND batch_credits >= 1`,
		s.account)
	if err != nil {
		return fmt.Errorf("ledger batch deduct: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger batch deduct: %w", err)
	}

	if affected != 1 {
		return ErrInsufficientBatchCredits
	}

	s.recordDeduction(ctx, 1, meta)

	return nil
}

func (s *SQLite) Refund(ctx context.Context, amount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET credits = credits + ? WHERE account = ?`, amount, s.account)
	if err != nil {
		return fmt.Errorf("ledger refund: %w", err)
	}

	return nil
}

func (s *SQLite) recordDeduction(ctx context.Context, amount int, meta DeductionMetadata) {
	// Audit only; a failed insert must not fail the deduction.
	_, _ = s.db.ExecContext(ctx,
		`INSERT INTO deductions (account, amount, request_id, mode, platform, reason) VALUES (?, ?, ?, ?, ?, ?)`,
		s.account, amount, meta.RequestID, string(meta.Mode), meta.Platform, meta.Reason)
}

func (s *SQLite) Close(_ context.Context) error {
	return s.db.Close()
}
