package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultBalanceTTL = 5 * time.Minute
	defaultKeyPrefix  = "ledger:"
	pingTimeout       = 5 * time.Second
)

// RedisBalanceCache implements ledger.BalanceCache on Redis, storing each
// balance as a JSON string under <prefix>balance:<order id>
type RedisBalanceCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	keyPrefix  string
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisBalanceCacheOption is a functional option for configuring the cache
type RedisBalanceCacheOption func(*RedisBalanceCache)

// WithTTL sets how long balances live. Zero keeps the default.
func WithTTL(ttl time.Duration) RedisBalanceCacheOption {
	return func(c *RedisBalanceCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the key namespace
func WithKeyPrefix(prefix string) RedisBalanceCacheOption {
	return func(c *RedisBalanceCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisBalanceCacheOption {
	return func(c *RedisBalanceCache) {
		c.logger = logger
	}
}

// NewRedisBalanceCache connects to Redis and verifies the connection
func NewRedisBalanceCache(cfg config.RedisConfig, opts ...RedisBalanceCacheOption) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisBalanceCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisBalanceCacheWithClient creates a cache on an existing client.
// The caller keeps ownership of the client.
func NewRedisBalanceCacheWithClient(client *redis.Client, opts ...RedisBalanceCacheOption) *RedisBalanceCache {
	c := &RedisBalanceCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultBalanceTTL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisBalanceCache) key(orderID uuid.UUID) string {
	return c.keyPrefix + "balance:" + orderID.String()
}

// Get retrieves a balance from Redis
func (c *RedisBalanceCache) Get(ctx context.Context, orderID uuid.UUID) (*ledger.OrderBalance, error) {
	key := c.key(orderID)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance from cache: %w", err)
	}

	var balance ledger.OrderBalance
	if err := json.Unmarshal(data, &balance); err != nil {
		c.logger.Warn("Dropping corrupted balance cache entry",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return nil, nil
	}
	return &balance, nil
}

// Set stores a balance in Redis
func (c *RedisBalanceCache) Set(ctx context.Context, balance *ledger.OrderBalance) error {
	if balance == nil {
		return nil
	}
	data, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("failed to marshal balance: %w", err)
	}
	if err := c.client.Set(ctx, c.key(balance.OrderID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set balance in cache: %w", err)
	}
	return nil
}

// Invalidate deletes the balances of the given orders in one round trip
func (c *RedisBalanceCache) Invalidate(ctx context.Context, orderIDs ...uuid.UUID) error {
	if len(orderIDs) == 0 {
		return nil
	}
	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate balances: %w", err)
	}
	return nil
}

// Close closes the Redis client if this cache created it
func (c *RedisBalanceCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ping checks the Redis connection, for health checks
func (c *RedisBalanceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Ensure RedisBalanceCache implements ledger.BalanceCache
var _ ledger.BalanceCache = (*RedisBalanceCache)(nil)
