package ledger

import "github.com/laundrydesk/backend/internal/domain/shared"

// Stable error codes returned by the ledger. API consumers branch on these.
const (
	CodeOrderNotFound           = "ORDER_NOT_FOUND"
	CodePartnerNotFound         = "PARTNER_NOT_FOUND"
	CodePaymentNotFound         = "PAYMENT_NOT_FOUND"
	CodeTenantMismatch          = "TENANT_MISMATCH"
	CodeInvalidAmount           = "INVALID_AMOUNT"
	CodeInvalidPaymentMethod    = "INVALID_PAYMENT_METHOD"
	CodeOrderAlreadyPaid        = "ORDER_ALREADY_PAID"
	CodePaymentAlreadyCancelled = "PAYMENT_ALREADY_CANCELLED"
	CodeNoPaymentToCancel       = "NO_PAYMENT_TO_CANCEL"
	CodeOrderCompanyMismatch    = "ORDER_COMPANY_MISMATCH"
	CodeLedgerInconsistent      = "LEDGER_INCONSISTENT"
	CodeHardDeleteDisabled      = "HARD_DELETE_DISABLED"
	CodeInvalidPaymentCode      = "INVALID_PAYMENT_CODE"
	CodeInvalidDateRange        = "INVALID_DATE_RANGE"
)

var (
	ErrOrderNotFound           = shared.NewDomainError(CodeOrderNotFound, "Order not found")
	ErrPartnerNotFound         = shared.NewDomainError(CodePartnerNotFound, "Partner not found")
	ErrPaymentNotFound         = shared.NewDomainError(CodePaymentNotFound, "Payment not found")
	ErrTenantMismatch          = shared.NewDomainError(CodeTenantMismatch, "Access to this resource is denied")
	ErrInvalidAmount           = shared.NewDomainError(CodeInvalidAmount, "Payment amount must be positive")
	ErrInvalidPaymentMethod    = shared.NewDomainError(CodeInvalidPaymentMethod, "Invalid payment method")
	ErrOrderAlreadyPaid        = shared.NewDomainError(CodeOrderAlreadyPaid, "Order is already fully paid")
	ErrPaymentAlreadyCancelled = shared.NewDomainError(CodePaymentAlreadyCancelled, "Payment has already been cancelled")
	ErrNoPaymentToCancel       = shared.NewDomainError(CodeNoPaymentToCancel, "Payment has no allocation to cancel")
	ErrHardDeleteDisabled      = shared.NewDomainError(CodeHardDeleteDisabled, "Hard delete of payments is disabled")
	ErrInvalidPaymentCode      = shared.NewDomainError(CodeInvalidPaymentCode, "Payment code cannot be empty")
	ErrInvalidDateRange        = shared.NewDomainError(CodeInvalidDateRange, "date_to must not be before date_from")
)

// ConsistencyError marks ledger data that contradicts its own invariants.
// It is never a user error and is not retried.
type ConsistencyError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *ConsistencyError) Error() string {
	return e.Code + ": " + e.Message
}

// NewOrderCompanyMismatch reports an order referenced by a ledger entry that
// belongs to a different company than the payment.
func NewOrderCompanyMismatch(message string) *ConsistencyError {
	return &ConsistencyError{Code: CodeOrderCompanyMismatch, Message: message}
}

// NewLedgerInconsistent reports any other broken ledger invariant
func NewLedgerInconsistent(message string) *ConsistencyError {
	return &ConsistencyError{Code: CodeLedgerInconsistent, Message: message}
}
