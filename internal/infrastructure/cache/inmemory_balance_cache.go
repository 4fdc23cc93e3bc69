package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryBalanceCache implements ledger.BalanceCache in process memory.
// Suitable for single-instance deployments and tests: instances do not see
// each other's invalidations.
type InMemoryBalanceCache struct {
	entries sync.Map // map[uuid.UUID]*cacheEntry[ledger.OrderBalance]
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// InMemoryBalanceCacheOption is a functional option for configuring the cache
type InMemoryBalanceCacheOption func(*InMemoryBalanceCache)

// WithInMemoryTTL sets how long balances live. Zero keeps the default.
func WithInMemoryTTL(ttl time.Duration) InMemoryBalanceCacheOption {
	return func(c *InMemoryBalanceCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryBalanceCacheOption {
	return func(c *InMemoryBalanceCache) {
		c.logger = logger
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) InMemoryBalanceCacheOption {
	return func(c *InMemoryBalanceCache) {
		c.now = now
	}
}

// NewInMemoryBalanceCache creates the cache and starts its cleanup loop.
// Call Close to stop the loop.
func NewInMemoryBalanceCache(opts ...InMemoryBalanceCacheOption) *InMemoryBalanceCache {
	c := &InMemoryBalanceCache{
		ttl:    defaultBalanceTTL,
		now:    time.Now,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()
	return c
}

// Get returns a copy of the cached balance so callers cannot mutate the entry
func (c *InMemoryBalanceCache) Get(_ context.Context, orderID uuid.UUID) (*ledger.OrderBalance, error) {
	if value, ok := c.entries.Load(orderID); ok {
		entry := value.(*cacheEntry[ledger.OrderBalance])
		if c.now().Before(entry.expiresAt) {
			c.hits.Add(1)
			balance := entry.value
			return &balance, nil
		}
		c.entries.CompareAndDelete(orderID, value)
	}
	c.misses.Add(1)
	return nil, nil
}

// Set stores a copy of balance
func (c *InMemoryBalanceCache) Set(_ context.Context, balance *ledger.OrderBalance) error {
	if balance == nil {
		return nil
	}
	c.entries.Store(balance.OrderID, &cacheEntry[ledger.OrderBalance]{
		value:     *balance,
		expiresAt: c.now().Add(c.ttl),
	})
	return nil
}

// Invalidate drops the balances of the given orders
func (c *InMemoryBalanceCache) Invalidate(_ context.Context, orderIDs ...uuid.UUID) error {
	for _, id := range orderIDs {
		c.entries.Delete(id)
	}
	return nil
}

// Close stops the cleanup loop. Safe to call more than once.
func (c *InMemoryBalanceCache) Close() error {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns hit and miss counts
func (c *InMemoryBalanceCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryBalanceCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryBalanceCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *InMemoryBalanceCache) removeExpired() {
	now := c.now()
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if !now.Before(value.(*cacheEntry[ledger.OrderBalance]).expiresAt) {
			c.entries.CompareAndDelete(key, value)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Removed expired balance cache entries", zap.Int("removed", removed))
	}
}

// Ensure InMemoryBalanceCache implements ledger.BalanceCache
var _ ledger.BalanceCache = (*InMemoryBalanceCache)(nil)
