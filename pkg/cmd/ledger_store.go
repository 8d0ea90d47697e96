package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
)

const defaultStartingCredits = 100

const defaultStartingBatchCredits = 10

// NewLedgerStore builds a credit store from a URL. Supported schemes:
// redis:// or postgres:// for a shared instance, sqlite:// for a local file;
// anything else falls back to the in-memory store seeded with development
// balances.
func NewLedgerStore(ledgerURL, account string) (ledger.Store, error) {
	switch parseLedgerProvider(ledgerURL) {
	case "postgres", "postgresql":
		store, err := ledger.NewPostgres(context.Background(), ledgerURL, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL ledger store: %w", err)
		}

		if err := store.EnsureAccount(context.Background(), defaultStartingCredits, defaultStartingBatchCredits); err != nil {
			return nil, err
		}

		return store, nil
	case "redis":
		store, err := ledger.NewRedisFromURL(ledgerURL, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis ledger store: %w", err)
		}

		return store, nil
	case "sqlite":
		store, err := ledger.NewSQLite(strings.TrimPrefix(ledgerURL, "sqlite://"), account)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite ledger store: %w", err)
		}

		if err := store.EnsureAccount(context.Background(), defaultStartingCredits, defaultStartingBatchCredits); err != nil {
			return nil, err
		}

		return store, nil
	default:
		return ledger.NewMemory(defaultStartingCredits, defaultStartingBatchCredits), nil
	}
}

func parseLedgerProvider(ledgerURL string) string {
	provider, _, found := strings.Cut(ledgerURL, "://")
	if !found {
		return "memory"
	}

	return provider
}
