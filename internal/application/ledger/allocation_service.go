package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/laundrydesk/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllocationService applies incoming payments to orders
type AllocationService struct {
	deps  Dependencies
	guard ledger.TenantGuard
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(deps Dependencies) *AllocationService {
	return &AllocationService{deps: deps}
}

// AllocatePayment records a payment against an order. The amount applied is
// capped at the order's residual as recomputed from the ledger under a row
// lock; any excess stays on Payment.Amount only.
func (s *AllocationService) AllocatePayment(ctx context.Context, cmd AllocatePaymentCommand) (result *AllocationResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "allocate")
	defer span.End()
	started := time.Now()
	defer func() {
		s.deps.finish(ctx, telemetry.OperationAllocate, started, err, map[string]string{
			"order_id": cmd.OrderID.String(),
		})
		if err != nil {
			telemetry.RecordError(span, err)
		}
	}()

	span.SetAttributes(
		telemetry.SpanAttrOrderID.String(cmd.OrderID.String()),
		telemetry.SpanAttrPartnerID.String(cmd.PartnerID.String()),
		telemetry.SpanAttrAmount.String(cmd.Amount.String()),
		telemetry.SpanAttrPaymentMethod.String(string(cmd.Method)),
	)

	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !cmd.Amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if !cmd.Method.IsValid() {
		return nil, ledger.ErrInvalidPaymentMethod
	}

	var (
		payment *ledger.Payment
		order   *ledger.Order
		applied decimal.Decimal
	)
	err = s.deps.Store.Transaction(ctx, func(tx ledger.LedgerTx) error {
		var err error
		order, err = s.loadOrder(ctx, tx, caller, cmd.OrderID)
		if err != nil {
			return err
		}
		if err := s.checkPartner(ctx, tx, caller, order, cmd.PartnerID); err != nil {
			return err
		}

		entries, err := tx.Entries().FindByOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("failed to load ledger entries: %w", err)
		}
		current := order.Totals(entries)
		if !current.PaidAmount.Equal(order.PaidAmount) || !current.Residual.Equal(order.Residual) {
			logger.L(ctx).Warn("Order totals drifted from ledger, using ledger values",
				zap.String("order_id", order.ID.String()),
				zap.String("stored_paid", order.PaidAmount.String()),
				zap.String("ledger_paid", current.PaidAmount.String()))
		}
		if current.Residual.LessThanOrEqual(decimal.Zero) {
			return ledger.ErrOrderAlreadyPaid
		}
		applied = ledger.CapAllocation(current.Residual, cmd.Amount)

		code, err := tx.Sequences().NextRef(ctx, ledger.SequenceScopePayment, order.TenantID)
		if err != nil {
			return fmt.Errorf("failed to generate payment code: %w", err)
		}
		payment, err = ledger.NewPayment(order.TenantID, cmd.PartnerID, order.ID, code,
			cmd.Amount, cmd.Method, cmd.PaymentDate, cmd.Note)
		if err != nil {
			return err
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		entry, err := ledger.NewAllocationEntry(order.TenantID, payment.ID, order.ID, applied)
		if err != nil {
			return err
		}
		if err := tx.Entries().Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to append allocation entry: %w", err)
		}

		order.ApplyTotals(order.Totals(append(entries, entry)))
		if err := tx.Orders().UpdateTotals(ctx, order); err != nil {
			return fmt.Errorf("failed to update order totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		telemetry.SpanAttrPaymentID.String(payment.ID.String()),
		telemetry.SpanAttrPaymentCode.String(payment.PaymentCode),
		telemetry.SpanAttrAllocated.String(applied.String()),
		telemetry.SpanAttrResidual.String(order.Residual.String()),
		telemetry.SpanAttrPaymentStatus.String(order.PaymentStatus.String()),
	)
	logger.L(ctx).Info("Payment allocated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_code", payment.PaymentCode),
		zap.String("order_id", order.ID.String()),
		zap.String("tenant_id", order.TenantID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("allocated", applied.String()),
		zap.String("payment_status", order.PaymentStatus.String()),
	)
	s.deps.publish(ctx, ledger.NewPaymentAllocatedEvent(payment, order, applied))

	return &AllocationResult{
		PaymentID:     payment.ID,
		PaymentCode:   payment.PaymentCode,
		OrderID:       order.ID,
		Amount:        payment.Amount,
		Allocated:     applied,
		PaidAmount:    order.PaidAmount,
		Residual:      order.Residual,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

func (s *AllocationService) loadOrder(ctx context.Context, tx ledger.LedgerTx, caller shared.Caller, id uuid.UUID) (*ledger.Order, error) {
	order, err := tx.Orders().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if err := s.guard.Order(caller, order); err != nil {
		return nil, err
	}
	return order, nil
}

// checkPartner requires the partner to exist, be visible to the caller and
// belong to the same tenant as the order
func (s *AllocationService) checkPartner(ctx context.Context, tx ledger.LedgerTx, caller shared.Caller, order *ledger.Order, partnerID uuid.UUID) error {
	partner, err := tx.Partners().FindByID(ctx, partnerID)
	if err != nil {
		return fmt.Errorf("failed to load partner: %w", err)
	}
	if err := s.guard.Partner(caller, partner); err != nil {
		return err
	}
	if partner.TenantID != order.TenantID {
		return ledger.ErrTenantMismatch
	}
	return nil
}
