package cache

import (
	"context"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
)

// NopBalanceCache never stores anything; every Get is a miss
type NopBalanceCache struct{}

// Get always misses
func (NopBalanceCache) Get(context.Context, uuid.UUID) (*ledger.OrderBalance, error) {
	return nil, nil
}

// Set discards the balance
func (NopBalanceCache) Set(context.Context, *ledger.OrderBalance) error { return nil }

// Invalidate does nothing
func (NopBalanceCache) Invalidate(context.Context, ...uuid.UUID) error { return nil }

var _ ledger.BalanceCache = NopBalanceCache{}
