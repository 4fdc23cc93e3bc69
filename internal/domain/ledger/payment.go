package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodEWallet      PaymentMethod = "E_WALLET"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard,
		PaymentMethodEWallet, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation
func (m PaymentMethod) String() string {
	return string(m)
}

// AllPaymentMethods returns every accepted payment method
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodBankTransfer,
		PaymentMethodCard,
		PaymentMethodEWallet,
		PaymentMethodOther,
	}
}

// SequenceScopePayment is the sequence scope used for payment codes
const SequenceScopePayment = "Payment"

// Payment is one money-receipt event. Amount is what the customer tendered
// and may exceed what was allocated. After creation only Note changes, and
// only by appending.
type Payment struct {
	shared.TenantAggregateRoot
	PartnerID   uuid.UUID
	OrderID     *uuid.UUID
	PaymentCode string
	Amount      decimal.Decimal
	Method      PaymentMethod
	PaymentDate time.Time
	Note        string
}

// NewPayment creates a payment tendered against an order
func NewPayment(
	tenantID, partnerID, orderID uuid.UUID,
	code string,
	amount decimal.Decimal,
	method PaymentMethod,
	paymentDate time.Time,
	note string,
) (*Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}
	if code == "" {
		return nil, ErrInvalidPaymentCode
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PartnerID:           partnerID,
		OrderID:             &orderID,
		PaymentCode:         code,
		Amount:              amount,
		Method:              method,
		PaymentDate:         paymentDate,
		Note:                strings.TrimSpace(note),
	}
	return p, nil
}

// AppendNote adds a timestamped line to the note. Existing content is kept.
// An empty reason leaves the note untouched.
func (p *Payment) AppendNote(reason string, at time.Time) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	line := "[" + at.UTC().Format(time.RFC3339) + "] " + reason
	if p.Note == "" {
		p.Note = line
	} else {
		p.Note = p.Note + "\n" + line
	}
	p.Touch()
}
