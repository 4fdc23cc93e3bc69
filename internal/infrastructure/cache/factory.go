package cache

import (
	"fmt"
	"io"

	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Cache types accepted in cache.type
const (
	TypeRedis  = "redis"
	TypeMemory = "memory"
	TypeNone   = "none"
)

// BalanceCacheFactory creates the balance cache selected by configuration
type BalanceCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// BalanceCacheFactoryOption is a functional option for configuring the factory
type BalanceCacheFactoryOption func(*BalanceCacheFactory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) BalanceCacheFactoryOption {
	return func(f *BalanceCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) BalanceCacheFactoryOption {
	return func(f *BalanceCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewBalanceCacheFactory creates a new factory
func NewBalanceCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...BalanceCacheFactoryOption) *BalanceCacheFactory {
	f := &BalanceCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured cache and a closer releasing its resources
func (f *BalanceCacheFactory) Create() (ledger.BalanceCache, io.Closer, error) {
	switch f.cacheConfig.Type {
	case TypeNone:
		f.logger.Info("Balance cache disabled")
		return NopBalanceCache{}, io.NopCloser(nil), nil

	case TypeMemory, "":
		f.logger.Info("Using in-memory balance cache", zap.Duration("ttl", f.cacheConfig.BalanceTTL))
		c := f.inMemory()
		return c, c, nil

	case TypeRedis:
		c, err := NewRedisBalanceCache(f.redisConfig,
			WithTTL(f.cacheConfig.BalanceTTL),
			WithKeyPrefix(f.cacheConfig.KeyPrefix),
			WithRedisLogger(f.logger),
		)
		if err == nil {
			f.logger.Info("Using Redis balance cache",
				zap.String("addr", f.redisConfig.Addr()),
				zap.Duration("ttl", f.cacheConfig.BalanceTTL))
			return c, c, nil
		}
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("redis balance cache unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory balance cache. "+
			"Balances may be stale on other instances until the TTL expires.",
			zap.Error(err))
		mem := f.inMemory()
		return mem, mem, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache type %q", f.cacheConfig.Type)
	}
}

func (f *BalanceCacheFactory) inMemory() *InMemoryBalanceCache {
	return NewInMemoryBalanceCache(
		WithInMemoryTTL(f.cacheConfig.BalanceTTL),
		WithInMemoryLogger(f.logger),
	)
}
