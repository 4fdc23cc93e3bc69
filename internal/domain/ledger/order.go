package ledger

import (
	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the money state of an order, derived from its ledger
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// IsValid checks if the status is a known value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation
func (s PaymentStatus) String() string {
	return string(s)
}

// Order is the laundry order as seen by the ledger. Line items and the
// workflow Status are owned by order management; PaidAmount, Residual and
// PaymentStatus are only ever written through ApplyTotals.
type Order struct {
	shared.TenantAggregateRoot
	PartnerID     *uuid.UUID
	Code          string
	Status        string
	TotalPrice    decimal.Decimal
	PaidAmount    decimal.Decimal
	Residual      decimal.Decimal
	PaymentStatus PaymentStatus
}

// Totals computes the order's money fields from the given ledger entries
func (o *Order) Totals(entries []AllocationEntry) Totals {
	return Recompute(o.TotalPrice, entries)
}

// ApplyTotals overwrites the derived money fields with a recomputation result
func (o *Order) ApplyTotals(t Totals) {
	o.PaidAmount = t.PaidAmount
	o.Residual = t.Residual
	o.PaymentStatus = t.PaymentStatus
	o.Touch()
}

// BelongsTo reports whether the order is owned by tenantID
func (o *Order) BelongsTo(tenantID uuid.UUID) bool {
	return o.TenantID == tenantID
}
