package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AllocatePaymentCommand records money received against one order
type AllocatePaymentCommand struct {
	OrderID     uuid.UUID
	PartnerID   uuid.UUID
	Amount      decimal.Decimal
	Method      ledger.PaymentMethod
	PaymentDate time.Time
	Note        string
}

// AllocationResult describes a committed allocation
type AllocationResult struct {
	PaymentID     uuid.UUID            `json:"payment_id"`
	PaymentCode   string               `json:"payment_code"`
	OrderID       uuid.UUID            `json:"order_id"`
	Amount        decimal.Decimal      `json:"amount"`
	Allocated     decimal.Decimal      `json:"allocated"`
	PaidAmount    decimal.Decimal      `json:"paid_amount"`
	Residual      decimal.Decimal      `json:"residual"`
	PaymentStatus ledger.PaymentStatus `json:"payment_status"`
}

// CancelPaymentCommand reverses every allocation of a payment
type CancelPaymentCommand struct {
	PaymentID uuid.UUID
	Reason    string
}

// OrderTotals is an order's money state after a mutation
type OrderTotals struct {
	OrderID       uuid.UUID            `json:"order_id"`
	PaidAmount    decimal.Decimal      `json:"paid_amount"`
	Residual      decimal.Decimal      `json:"residual"`
	PaymentStatus ledger.PaymentStatus `json:"payment_status"`
}

// CancellationResult describes a committed reversal
type CancellationResult struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	Reversed  decimal.Decimal `json:"reversed"`
	Orders    []OrderTotals   `json:"orders"`
	Note      string          `json:"note"`
}

// HardDeleteResult describes the administrative delete
type HardDeleteResult struct {
	PaymentID uuid.UUID    `json:"payment_id"`
	Order     *OrderTotals `json:"order,omitempty"`
}

// PaymentResponse is the read projection of a payment
type PaymentResponse struct {
	ID           uuid.UUID            `json:"id"`
	TenantID     uuid.UUID            `json:"tenant_id"`
	PaymentCode  string               `json:"payment_code"`
	OrderID      *uuid.UUID           `json:"order_id,omitempty"`
	OrderCode    string               `json:"order_code,omitempty"`
	PartnerID    uuid.UUID            `json:"partner_id"`
	PartnerName  string               `json:"partner_name,omitempty"`
	Amount       decimal.Decimal      `json:"amount"`
	NetAllocated decimal.Decimal      `json:"net_allocated"`
	Method       ledger.PaymentMethod `json:"method"`
	PaymentDate  time.Time            `json:"payment_date"`
	Note         string               `json:"note"`
	Cancelled    bool                 `json:"cancelled"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ToPaymentResponse converts a domain view to its response form
func ToPaymentResponse(v *ledger.PaymentView) PaymentResponse {
	return PaymentResponse{
		ID:           v.ID,
		TenantID:     v.TenantID,
		PaymentCode:  v.PaymentCode,
		OrderID:      v.OrderID,
		OrderCode:    v.OrderCode,
		PartnerID:    v.PartnerID,
		PartnerName:  v.PartnerName,
		Amount:       v.Amount,
		NetAllocated: v.NetAllocated,
		Method:       v.Method,
		PaymentDate:  v.PaymentDate,
		Note:         v.Note,
		Cancelled:    v.Cancelled,
		CreatedAt:    v.CreatedAt,
	}
}

// EntryResponse is one row of a ledger audit trail
type EntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	PaymentID       uuid.UUID       `json:"payment_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	AmountAllocated decimal.Decimal `json:"amount_allocated"`
	Reversal        bool            `json:"reversal"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToEntryResponses converts entries preserving their order
func ToEntryResponses(entries []ledger.AllocationEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = EntryResponse{
			ID:              e.ID,
			PaymentID:       e.PaymentID,
			OrderID:         e.OrderID,
			AmountAllocated: e.AmountAllocated,
			Reversal:        e.IsReversal(),
			CreatedAt:       e.CreatedAt,
		}
	}
	return out
}

// ListPaymentsQuery narrows a payment listing. TenantID is honoured only for
// super-admins; other callers always see their own tenant.
type ListPaymentsQuery struct {
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
	TenantID  *uuid.UUID
	OrderID   *uuid.UUID
	PartnerID *uuid.UUID
	Method    *ledger.PaymentMethod
	DateFrom  *time.Time
	DateTo    *time.Time
}
