package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// Postgres is a Store backed by a shared PostgreSQL database, scoped to one
// account. Conditional UPDATEs keep the check-and-decrement atomic at the
// database boundary, so multiple API instances can share one ledger.
type Postgres struct {
	db      *sql.DB
	account string
}

func NewPostgres(ctx context.Context, databaseURL, account string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		return nil, fmt.Errorf("ping ledger database: %w", err)
	}

	p := &Postgres{db: db, account: account}
	if err := p.migrate(ctx); err != nil {
		db.Close()

		return nil, err
	}

	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		account TEXT PRIMARY KEY,
		credits INTEGER NOT NULL DEFAULT 0,
		batch_credits INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS deductions (
		id SERIAL PRIMARY KEY,
		account TEXT NOT NULL REFERENCES accounts(account),
		amount INTEGER NOT NULL,
		request_id TEXT,
		mode TEXT,
		platform TEXT,
		reason TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	`

	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger database: %w", err)
	}

	return nil
}

// EnsureAccount creates the account row with a starting balance when absent.
func (p *Postgres) EnsureAccount(ctx context.Context, credits, batchCredits int) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO accounts (account, credits, batch_credits) VALUES ($1, $2, $3)
		 ON CONFLICT (account) DO NOTHING`,
		p.account, credits, batchCredits)
	if err != nil {
		return fmt.Errorf("ensure ledger account: %w", err)
	}

	return nil
}

func (p *Postgres) Balance(ctx context.Context) (CreditBalance, error) {
	var balance CreditBalance

	err := p.db.QueryRowContext(ctx,
		`SELECT credits, batch_credits FROM accounts WHERE account = $1`, p.account).
		Scan(&balance.Credits, &balance.BatchCredits)
	if errors.Is(err, sql.ErrNoRows) {
		return CreditBalance{}, ErrAccountNotFound
	}

	if err != nil {
		return CreditBalance{}, fmt.Errorf("ledger balance: %w", err)
	}

	return balance, nil
}

func (p *Postgres) Reserve(ctx context.Context, amount int) (bool, error) {
	result, err := p.db.ExecContext(ctx,
		`UPDATE accounts SET credits = credits - $1 WHERE account = $2 AND credits >= $1`,
		amount, p.account)
	if err != nil {
		return false, fmt.Errorf("ledger reserve: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ledger reserve: %w", err)
	}

	return affected == 1, nil
}

func (p *Postgres) Deduct(ctx context.Context, amount int, meta DeductionMetadata) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE accounts SET credits = credits - $1 WHERE account = $2`, amount, p.account)
	if err != nil {
		return fmt.Errorf("ledger deduct: %w", err)
	}

	p.recordDeduction(ctx, amount, meta)

	return nil
}

func (p *Postgres) DeductBatch(ctx context.Context, meta DeductionMetadata) error {
	result, err := p.db.ExecContext(ctx,
		`UPDATE accounts SET batch_credits = batch_credits - 1 WHERE account = $1 AND batch_credits >= 1`,
		p.account)
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

	p.recordDeduction(ctx, 1, meta)

	return nil
}

func (p *Postgres) Refund(ctx context.Context, amount int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE accounts SET credits = credits + $1 WHERE account = $2`, amount, p.account)
	if err != nil {
		return fmt.Errorf("ledger refund: %w", err)
	}

	return nil
}

func (p *Postgres) recordDeduction(ctx context.Context, amount int, meta DeductionMetadata) {
	// Audit only; a failed insert must not fail the deduction.
	_, _ = p.db.ExecContext(ctx,
		`INSERT INTO deductions (account, amount, request_id, mode, platform, reason) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.account, amount, meta.RequestID, string(meta.Mode), meta.Platform, meta.Reason)
}

func (p *Postgres) Close(_ context.Context) error {
	return p.db.Close()
}
