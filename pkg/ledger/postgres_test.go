//go:build integration

package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

// setupPostgres shares one container across tests; isolation comes from a
// fresh account per test.
func setupPostgres(t *testing.T, credits, batchCredits int) *Postgres {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("streamsuite_test"),
			postgres.WithUsername("streamsuite"),
			postgres.WithPassword("streamsuite"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewPostgres(ctx, databaseURL, "acct-"+uuid.NewString())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	require.NoError(t, store.EnsureAccount(ctx, credits, batchCredits))

	return store
}

func TestPostgres_Balance(t *testing.T) {
	store := setupPostgres(t, 7, 2)

	balance, err := store.Balance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, CreditBalance{Credits: 7, BatchCredits: 2}, balance)
}

func TestPostgres_BalanceUnknownAccount(t *testing.T) {
	store := setupPostgres(t, 0, 0)
	store.account = "nobody-" + uuid.NewString()

	_, err := store.Balance(t.Context())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestPostgres_ReserveConditional(t *testing.T) {
	store := setupPostgres(t, 3, 0)

	ok, err := store.Reserve(t.Context(), 2)
	require.NoError(t, err)
	assert.True(t, ok)

	// Remaining balance of 1 cannot cover another 2.
	ok, err = store.Reserve(t.Context(), 2)
	require.NoError(t, err)
	assert.False(t, ok)

	balance, err := store.Balance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, balance.Credits)
}

func TestPostgres_ConcurrentReserve(t *testing.T) {
	store := setupPostgres(t, 1, 0)

	var wg sync.WaitGroup

	successes := make(chan bool, 10)

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ok, err := store.Reserve(context.Background(), 1)
			require.NoError(t, err)
			successes <- ok
		}()
	}

	wg.Wait()
	close(successes)

	granted := 0
	for ok := range successes {
		if ok {
			granted++
		}
	}

	assert.Equal(t, 1, granted)
}

func TestPostgres_DeductAndRefund(t *testing.T) {
	store := setupPostgres(t, 10, 0)

	require.NoError(t, store.Deduct(t.Context(), 4, DeductionMetadata{RequestID: "req-9"}))
	require.NoError(t, store.Refund(t.Context(), 1))

	balance, err := store.Balance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 7, balance.Credits)
}

func TestPostgres_DeductBatchConditional(t *testing.T) {
	store := setupPostgres(t, 0, 1)

	require.NoError(t, store.DeductBatch(t.Context(), DeductionMetadata{}))
	assert.ErrorIs(t, store.DeductBatch(t.Context(), DeductionMetadata{}), ErrInsufficientBatchCredits)
}

func TestPostgres_EnsureAccountIdempotent(t *testing.T) {
	store := setupPostgres(t, 5, 1)

	ok, err := store.Reserve(t.Context(), 3)
	require.NoError(t, err)
	require.True(t, ok)

	// A second ensure must not reset the balance.
	require.NoError(t, store.EnsureAccount(t.Context(), 5, 1))

	balance, err := store.Balance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, balance.Credits)
}
