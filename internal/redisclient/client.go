package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a cached key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetJSON loads a cached value into dest. Returns ErrCacheMiss when the
// key is absent.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	return json.Unmarshal(raw, dest)
}

// SetJSON stores a value as JSON with a TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Delete removes keys. Missing keys are not an error.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// TxnRecord tracks one multi-row order transaction for reconciliation.
// State is "pending" until the master row commits.
type TxnRecord struct {
	Token          string    `json:"token"`
	OrderID        string    `json:"order_id"`
	Kind           string    `json:"kind"`
	State          string    `json:"state"`
	CompletedSteps int       `json:"completed_steps"`
	TotalSteps     int       `json:"total_steps"`
	StartedAt      time.Time `json:"started_at"`
}

// Transaction token states
const (
	TxnStatePending   = "pending"
	TxnStateCommitted = "committed"
	TxnStateFailed    = "failed"
)

const txnTTL = 7 * 24 * time.Hour

// PutTxn writes a transaction record keyed by token.
func (c *Client) PutTxn(ctx context.Context, rec TxnRecord) error {
	return c.SetJSON(ctx, fmt.Sprintf("txn:%s", rec.Token), rec, txnTTL)
}

// GetTxn loads a transaction record by token.
func (c *Client) GetTxn(ctx context.Context, token string) (*TxnRecord, error) {
	var rec TxnRecord
	if err := c.GetJSON(ctx, fmt.Sprintf("txn:%s", token), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
