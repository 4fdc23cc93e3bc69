package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/laundrydesk/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReversalService cancels payments by appending mirror entries
type ReversalService struct {
	deps  Dependencies
	guard ledger.TenantGuard
}

// NewReversalService creates a new ReversalService
func NewReversalService(deps Dependencies) *ReversalService {
	return &ReversalService{deps: deps}
}

// CancelPayment reverses every positive entry of a payment, recomputes each
// affected order and appends the reason to the payment note. History is
// never deleted.
func (s *ReversalService) CancelPayment(ctx context.Context, cmd CancelPaymentCommand) (result *CancellationResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "cancel")
	defer span.End()
	started := time.Now()
	defer func() {
		s.deps.finish(ctx, telemetry.OperationCancel, started, err, map[string]string{
			"payment_id": cmd.PaymentID.String(),
		})
		if err != nil {
			telemetry.RecordError(span, err)
		}
	}()
	span.SetAttributes(telemetry.SpanAttrPaymentID.String(cmd.PaymentID.String()))

	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	now := s.deps.now()
	var (
		payment  *ledger.Payment
		orders   []*ledger.Order
		reversed decimal.Decimal
	)
	err = s.deps.Store.Transaction(ctx, func(tx ledger.LedgerTx) error {
		var err error
		payment, err = tx.Payments().FindByIDForUpdate(ctx, cmd.PaymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if err := s.guard.Payment(caller, payment); err != nil {
			return err
		}

		entries, err := tx.Entries().FindByPayment(ctx, payment.ID)
		if err != nil {
			return fmt.Errorf("failed to load payment entries: %w", err)
		}
		if err := ledger.NewPaymentLifecycle(entries).Cancel(ctx); err != nil {
			return err
		}

		positives := ledger.PositiveEntries(entries)
		groups, orderIDs := ledger.GroupByOrder(positives)

		for _, orderID := range orderIDs {
			order, err := s.reverseOrder(ctx, tx, payment, orderID, groups[orderID])
			if err != nil {
				return err
			}
			orders = append(orders, order)
		}
		reversed = ledger.SumAllocated(positives)

		payment.AppendNote(cmd.Reason, now)
		if err := tx.Payments().UpdateNote(ctx, payment); err != nil {
			return fmt.Errorf("failed to update payment note: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	orderIDs := make([]uuid.UUID, len(orders))
	totals := make([]OrderTotals, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
		totals[i] = OrderTotals{
			OrderID:       o.ID,
			PaidAmount:    o.PaidAmount,
			Residual:      o.Residual,
			PaymentStatus: o.PaymentStatus,
		}
	}

	span.SetAttributes(
		telemetry.SpanAttrPaymentCode.String(payment.PaymentCode),
		telemetry.SpanAttrOrderCount.Int(len(orders)),
		telemetry.SpanAttrAmount.String(reversed.String()),
	)
	logger.L(ctx).Info("Payment cancelled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_code", payment.PaymentCode),
		zap.String("tenant_id", payment.TenantID.String()),
		zap.String("reversed", reversed.String()),
		zap.Int("orders", len(orders)),
	)
	s.deps.publish(ctx, ledger.NewPaymentCancelledEvent(payment, orderIDs, reversed, cmd.Reason, now))

	return &CancellationResult{
		PaymentID: payment.ID,
		Reversed:  reversed,
		Orders:    totals,
		Note:      payment.Note,
	}, nil
}

// reverseOrder locks one order, appends the negation of each positive entry
// the payment holds on it and persists the recomputed totals
func (s *ReversalService) reverseOrder(
	ctx context.Context,
	tx ledger.LedgerTx,
	payment *ledger.Payment,
	orderID uuid.UUID,
	positives []ledger.AllocationEntry,
) (*ledger.Order, error) {
	order, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, ledger.NewLedgerInconsistent(fmt.Sprintf(
			"payment %s has entries for missing order %s", payment.ID, orderID))
	}
	if !order.BelongsTo(payment.TenantID) {
		return nil, ledger.NewOrderCompanyMismatch(fmt.Sprintf(
			"order %s belongs to tenant %s, payment %s to tenant %s",
			order.ID, order.TenantID, payment.ID, payment.TenantID))
	}

	history, err := tx.Entries().FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order entries: %w", err)
	}

	mirror := make([]ledger.AllocationEntry, len(positives))
	for i, e := range positives {
		mirror[i] = e.Reverse()
	}

	// the net of this payment on the order must come back to zero, never below
	pairNet := decimal.Zero
	for _, e := range history {
		if e.PaymentID == payment.ID {
			pairNet = pairNet.Add(e.AmountAllocated)
		}
	}
	if pairNet.Add(ledger.SumAllocated(mirror)).IsNegative() {
		return nil, ledger.NewLedgerInconsistent(fmt.Sprintf(
			"reversal of payment %s would leave order %s with a negative allocation", payment.ID, order.ID))
	}

	if err := tx.Entries().Append(ctx, mirror...); err != nil {
		return nil, fmt.Errorf("failed to append reversal entries: %w", err)
	}

	order.ApplyTotals(order.Totals(append(history, mirror...)))
	if err := tx.Orders().UpdateTotals(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order totals: %w", err)
	}
	return order, nil
}
