package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua keeps check-and-decrement atomic on the Redis side; concurrent
// reservations against a balance that covers only one of them cannot both
// succeed.
var reserveScript = redis.NewScript(`
local balance = tonumber(redis.call('GET', KEYS[1]) or '0')
local amount = tonumber(ARGV[1])
if balance >= amount then
	redis.call('DECRBY', KEYS[1], amount)
	return 1
end
return 0
`)

// Redis is a Store backed by a shared Redis instance, scoped to one account.
type Redis struct {
	client  *redis.Client
	account string
}

func NewRedis(client *redis.Client, account string) *Redis {
	return &Redis{client: client, account: account}
}

// NewRedisFromURL connects from a redis:// URL.
func NewRedisFromURL(url, account string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	return NewRedis(redis.NewClient(opts), account), nil
}

func (r *Redis) creditsKey() string {
	return "ledger:credits:" + r.account
}

func (r *Redis) batchKey() string {
	return "ledger:batch_credits:" + r.account
}

func (r *Redis) Balance(ctx context.Context) (CreditBalance, error) {
	credits, err := r.getInt(ctx, r.creditsKey())
	if err != nil {
		return CreditBalance{}, err
	}

	batch, err := r.getInt(ctx, r.batchKey())
	if err != nil {
		return CreditBalance{}, err
	}

	return CreditBalance{Credits: credits, BatchCredits: batch}, nil
}

func (r *Redis) getInt(ctx context.Context, key string) (int, error) {
	value, err := r.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("ledger read %s: %w", key, err)
	}

	return value, nil
}

func (r *Redis) Reserve(ctx context.Context, amount int) (bool, error) {
	reserved, err := reserveScript.Run(ctx, r.client, []string{r.creditsKey()}, amount).Int()
	if err != nil {
		return false, fmt.Errorf("ledger reserve: %w", err)
	}

	return reserved == 1, nil
}

func (r *Redis) Deduct(ctx context.Context, amount int, meta DeductionMetadata) error {
	if err := r.client.DecrBy(ctx, r.creditsKey(), int64(amount)).Err(); err != nil {
		return fmt.Errorf("ledger deduct: %w", err)
	}

	r.recordDeduction(ctx, amount, meta)

	return nil
}

func (r *Redis) DeductBatch(ctx context.Context, meta DeductionMetadata) error {
	spent, err := reserveScript.Run(ctx, r.client, []string{r.batchKey()}, 1).Int()
	if err != nil {
		return fmt.Errorf("ledger batch deduct: %w", err)
	}

	if spent != 1 {
		return ErrInsufficientBatchCredits
	}

	r.recordDeduction(ctx, 1, meta)

	return nil
}

func (r *Redis) Refund(ctx context.Context, amount int) error {
	if err := r.client.IncrBy(ctx, r.creditsKey(), int64(amount)).Err(); err != nil {
		return fmt.Errorf("ledger refund: %w", err)
	}

	return nil
}

// recordDeduction appends an audit trail entry; failures here are not worth
// failing the deduction itself.
func (r *Redis) recordDeduction(ctx context.Context, amount int, meta DeductionMetadata) {
	entry, err := json.Marshal(map[string]any{
		"amount":     amount,
		"request_id": meta.RequestID,
		"mode":       meta.Mode,
		"platform":   meta.Platform,
		"reason":     meta.Reason,
		"at":         time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	r.client.RPush(ctx, "ledger:deductions:"+r.account, entry)
}

func (r *Redis) Close(_ context.Context) error {
	return r.client.Close()
}
