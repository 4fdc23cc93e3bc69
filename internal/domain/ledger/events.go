package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypePaymentAllocated   = "PaymentAllocated"
	EventTypePaymentCancelled   = "PaymentCancelled"
	EventTypePaymentHardDeleted = "PaymentHardDeleted"
)

// PaymentAllocatedEvent is raised after a payment and its entry are committed
type PaymentAllocatedEvent struct {
	shared.EventHeader
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentCode   string          `json:"payment_code"`
	OrderID       uuid.UUID       `json:"order_id"`
	PartnerID     uuid.UUID       `json:"partner_id"`
	Amount        decimal.Decimal `json:"amount"`
	Allocated     decimal.Decimal `json:"allocated"`
	Method        PaymentMethod   `json:"method"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewPaymentAllocatedEvent creates a PaymentAllocatedEvent
func NewPaymentAllocatedEvent(p *Payment, order *Order, allocated decimal.Decimal) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		EventHeader:   shared.NewEventHeader(EventTypePaymentAllocated, p.ID, p.TenantID),
		PaymentID:     p.ID,
		PaymentCode:   p.PaymentCode,
		OrderID:       order.ID,
		PartnerID:     p.PartnerID,
		Amount:        p.Amount,
		Allocated:     allocated,
		Method:        p.Method,
		PaymentStatus: order.PaymentStatus,
	}
}

// PaymentCancelledEvent is raised after the reversal entries are committed
type PaymentCancelledEvent struct {
	shared.EventHeader
	PaymentID   uuid.UUID       `json:"payment_id"`
	PaymentCode string          `json:"payment_code"`
	OrderIDs    []uuid.UUID     `json:"order_ids"`
	Reversed    decimal.Decimal `json:"reversed"`
	Method      PaymentMethod   `json:"method"`
	Reason      string          `json:"reason,omitempty"`
	CancelledAt time.Time       `json:"cancelled_at"`
}

// NewPaymentCancelledEvent creates a PaymentCancelledEvent
func NewPaymentCancelledEvent(p *Payment, orderIDs []uuid.UUID, reversed decimal.Decimal, reason string, at time.Time) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		EventHeader: shared.NewEventHeader(EventTypePaymentCancelled, p.ID, p.TenantID),
		PaymentID:   p.ID,
		PaymentCode: p.PaymentCode,
		OrderIDs:    orderIDs,
		Reversed:    reversed,
		Method:      p.Method,
		Reason:      reason,
		CancelledAt: at,
	}
}

// PaymentHardDeletedEvent is raised after the administrative delete path
type PaymentHardDeletedEvent struct {
	shared.EventHeader
	PaymentID   uuid.UUID       `json:"payment_id"`
	PaymentCode string          `json:"payment_code"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	DeletedBy   uuid.UUID       `json:"deleted_by"`
}

// NewPaymentHardDeletedEvent creates a PaymentHardDeletedEvent
func NewPaymentHardDeletedEvent(p *Payment, deletedBy uuid.UUID) *PaymentHardDeletedEvent {
	return &PaymentHardDeletedEvent{
		EventHeader: shared.NewEventHeader(EventTypePaymentHardDeleted, p.ID, p.TenantID),
		PaymentID:   p.ID,
		PaymentCode: p.PaymentCode,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		DeletedBy:   deletedBy,
	}
}

// AffectedOrders returns the orders whose balances an event changed
func AffectedOrders(event shared.DomainEvent) []uuid.UUID {
	switch e := event.(type) {
	case *PaymentAllocatedEvent:
		return []uuid.UUID{e.OrderID}
	case *PaymentCancelledEvent:
		return e.OrderIDs
	case *PaymentHardDeletedEvent:
		if e.OrderID != nil {
			return []uuid.UUID{*e.OrderID}
		}
	}
	return nil
}
