package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderBalance is the read projection of an order's money state
type OrderBalance struct {
	OrderID       uuid.UUID       `json:"order_id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	Code          string          `json:"code"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Residual      decimal.Decimal `json:"residual"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// NewOrderBalance builds the projection from an order and a fresh recomputation
func NewOrderBalance(order *Order, t Totals) *OrderBalance {
	return &OrderBalance{
		OrderID:       order.ID,
		TenantID:      order.TenantID,
		Code:          order.Code,
		TotalPrice:    order.TotalPrice,
		PaidAmount:    t.PaidAmount,
		Residual:      t.Residual,
		PaymentStatus: t.PaymentStatus,
		ComputedAt:    time.Now(),
	}
}

// BalanceCache holds recently computed order balances. Entries are dropped
// whenever a ledger event touches the order.
type BalanceCache interface {
	// Get returns the cached balance. Returns nil, nil on a miss.
	Get(ctx context.Context, orderID uuid.UUID) (*OrderBalance, error)

	// Set stores a balance with the cache's configured TTL
	Set(ctx context.Context, balance *OrderBalance) error

	// Invalidate drops the balances of the given orders
	Invalidate(ctx context.Context, orderIDs ...uuid.UUID) error
}
