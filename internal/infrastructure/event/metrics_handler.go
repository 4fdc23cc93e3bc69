package event

import (
	"context"

	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/infrastructure/telemetry"
)

// LedgerMetricsHandler turns committed ledger events into business metrics
type LedgerMetricsHandler struct {
	metrics *telemetry.LedgerMetrics
}

// NewLedgerMetricsHandler creates the handler. A nil metrics set is allowed
// and records nothing.
func NewLedgerMetricsHandler(metrics *telemetry.LedgerMetrics) *LedgerMetricsHandler {
	return &LedgerMetricsHandler{metrics: metrics}
}

// EventTypes returns the ledger events this handler counts
func (h *LedgerMetricsHandler) EventTypes() []string {
	return []string{
		ledger.EventTypePaymentAllocated,
		ledger.EventTypePaymentCancelled,
		ledger.EventTypePaymentHardDeleted,
	}
}

// Handle records the event
func (h *LedgerMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.PaymentAllocatedEvent:
		h.metrics.RecordAllocation(ctx, e.TenantID(), e.Method.String(), e.PaymentStatus.String(), e.Allocated)
	case *ledger.PaymentCancelledEvent:
		h.metrics.RecordCancellation(ctx, e.TenantID(), e.Method.String())
	case *ledger.PaymentHardDeletedEvent:
		h.metrics.RecordHardDelete(ctx, e.TenantID())
	}
	return nil
}

var _ shared.EventHandler = (*LedgerMetricsHandler)(nil)
