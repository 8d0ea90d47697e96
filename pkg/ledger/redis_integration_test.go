//go:build integration

package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var redisClient *goredis.Client

// setupRedis shares one container across tests; isolation comes from a fresh
// account per test.
func setupRedis(t *testing.T, credits, batchCredits int) *Redis {
	t.Helper()

	ctx := context.Background()

	if redisClient == nil {
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		require.NoError(t, err)

		host, err := container.Host(ctx)
		require.NoError(t, err)

		port, err := container.MappedPort(ctx, "6379")
		require.NoError(t, err)

		redisClient = goredis.NewClient(&goredis.Options{
			Addr: fmt.Sprintf("%s:%s", host, port.Port()),
		})
	}

	store := NewRedis(redisClient, "acct-"+uuid.NewString())

	require.NoError(t, redisClient.Set(ctx, store.creditsKey(), credits, 0).Err())
	require.NoError(t, redisClient.Set(ctx, store.batchKey(), batchCredits, 0).Err())

	return store
}

func TestRedis_Balance(t *testing.T) {
	store := setupRedis(t, 7, 2)

	balance, err := store.Balance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, CreditBalance{Credits: 7, BatchCredits: 2}, balance)
}

func TestRedis_BalanceMissingKeysReadsZero(t *testing.T) {
	setupRedis(t, 0, 0) // ensures the container is up

	store := NewRedis(redisClient, "acct-"+uuid.NewString())

	balance, err := store.Balance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, CreditBalance{}, balance)
}

func TestRedis_ReserveConditional(t *testing.T) {
	store := setupRedis(t, 3, 0)

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

func TestRedis_ConcurrentReserve(t *testing.T) {
	store := setupRedis(t, 1, 0)

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

	// The Lua script must grant exactly one of the racing reservations.
	assert.Equal(t, 1, granted)
}

func TestRedis_DeductAndRefund(t *testing.T) {
	store := setupRedis(t, 10, 0)

	require.NoError(t, store.Deduct(t.Context(), 4, DeductionMetadata{RequestID: "req-9"}))
	require.NoError(t, store.Refund(t.Context(), 1))

	balance, err := store.Balance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 7, balance.Credits)
}

func TestRedis_DeductBatchConditional(t *testing.T) {
	store := setupRedis(t, 0, 1)

	require.NoError(t, store.DeductBatch(t.Context(), DeductionMetadata{}))
	assert.ErrorIs(t, store.DeductBatch(t.Context(), DeductionMetadata{}), ErrInsufficientBatchCredits)
}

func TestRedis_DeductionAuditTrail(t *testing.T) {
	store := setupRedis(t, 10, 0)

	require.NoError(t, store.Deduct(t.Context(), 2, DeductionMetadata{RequestID: "req-7", Reason: "single generation"}))

	entries, err := redisClient.LRange(t.Context(), "ledger:deductions:"+store.account, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "req-7")
}
