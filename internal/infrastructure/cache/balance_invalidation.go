package cache

import (
	"context"
	"fmt"

	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BalanceInvalidationHandler drops cached balances of every order a
// committed ledger event touched
type BalanceInvalidationHandler struct {
	cache  ledger.BalanceCache
	logger *zap.Logger
}

// NewBalanceInvalidationHandler creates the handler
func NewBalanceInvalidationHandler(cache ledger.BalanceCache, logger *zap.Logger) *BalanceInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the ledger events that change balances
func (h *BalanceInvalidationHandler) EventTypes() []string {
	return []string{
		ledger.EventTypePaymentAllocated,
		ledger.EventTypePaymentCancelled,
		ledger.EventTypePaymentHardDeleted,
	}
}

// Handle invalidates the affected orders
func (h *BalanceInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	orderIDs := ledger.AffectedOrders(event)
	if len(orderIDs) == 0 {
		return nil
	}
	if err := h.cache.Invalidate(ctx, orderIDs...); err != nil {
		return fmt.Errorf("failed to invalidate balances for %s: %w", event.EventType(), err)
	}
	h.logger.Debug("Invalidated order balances",
		zap.String("event_type", event.EventType()),
		zap.Int("orders", len(orderIDs)))
	return nil
}

var _ shared.EventHandler = (*BalanceInvalidationHandler)(nil)
