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
	"go.uber.org/zap"
)

// AdminService holds the administrative hard delete. It removes the payment
// row and recomputes the order from the remaining payments' gross Amount,
// bypassing the ledger. Ledger entries of the deleted payment stay in place,
// so the order's stored totals can disagree with its ledger afterwards.
// Prefer ReversalService.CancelPayment.
type AdminService struct {
	deps    Dependencies
	enabled bool
}

// NewAdminService creates a new AdminService. With enabled false every call
// fails with ErrHardDeleteDisabled.
func NewAdminService(deps Dependencies, enabled bool) *AdminService {
	return &AdminService{deps: deps, enabled: enabled}
}

// HardDeletePayment deletes a payment outright. Super-admin only.
func (s *AdminService) HardDeletePayment(ctx context.Context, paymentID uuid.UUID) (result *HardDeleteResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "hard_delete")
	defer span.End()
	started := time.Now()
	defer func() {
		s.deps.finish(ctx, telemetry.OperationHardDelete, started, err, map[string]string{
			"payment_id": paymentID.String(),
		})
		if err != nil {
			telemetry.RecordError(span, err)
		}
	}()
	span.SetAttributes(telemetry.SpanAttrPaymentID.String(paymentID.String()))

	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.SpanAttrSuperAdmin.Bool(caller.SuperAdmin))
	if !s.enabled {
		return nil, ledger.ErrHardDeleteDisabled
	}
	if !caller.SuperAdmin {
		return nil, shared.ErrForbidden
	}

	var (
		payment *ledger.Payment
		order   *ledger.Order
	)
	err = s.deps.Store.Transaction(ctx, func(tx ledger.LedgerTx) error {
		var err error
		payment, err = tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return ledger.ErrPaymentNotFound
		}

		if payment.OrderID != nil {
			order, err = tx.Orders().FindByIDForUpdate(ctx, *payment.OrderID)
			if err != nil {
				return fmt.Errorf("failed to load order: %w", err)
			}
		}

		if err := tx.Payments().Delete(ctx, payment.ID); err != nil {
			return err
		}
		if order == nil {
			return nil
		}

		remaining, err := tx.Payments().SumAmountByOrder(ctx, order.TenantID, order.ID)
		if err != nil {
			return fmt.Errorf("failed to sum remaining payments: %w", err)
		}
		residual := order.TotalPrice.Sub(remaining)
		order.ApplyTotals(ledger.Totals{
			PaidAmount:    remaining,
			Residual:      residual,
			PaymentStatus: ledger.DeriveStatus(remaining, residual),
		})
		if err := tx.Orders().UpdateTotals(ctx, order); err != nil {
			return fmt.Errorf("failed to update order totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_code", payment.PaymentCode),
		zap.String("tenant_id", payment.TenantID.String()),
		zap.String("deleted_by", caller.UserID.String()),
	}
	result = &HardDeleteResult{PaymentID: payment.ID}
	if order != nil {
		fields = append(fields, zap.String("order_id", order.ID.String()))
		result.Order = &OrderTotals{
			OrderID:       order.ID,
			PaidAmount:    order.PaidAmount,
			Residual:      order.Residual,
			PaymentStatus: order.PaymentStatus,
		}
	}
	logger.L(ctx).Warn("Payment hard deleted; order totals recomputed from payment amounts, not the ledger", fields...)
	s.deps.publish(ctx, ledger.NewPaymentHardDeletedEvent(payment, caller.UserID))

	return result, nil
}
