package ledger

import (
	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/shared"
)

// TenantGuard is applied to every order, partner and payment the ledger
// loads. Cross-tenant access is denied unless the caller is a super-admin.
type TenantGuard struct{}

// Check returns ErrTenantMismatch when caller may not touch data of owner
func (TenantGuard) Check(caller shared.Caller, owner uuid.UUID) error {
	if caller.CanAccess(owner) {
		return nil
	}
	return ErrTenantMismatch
}

// Order checks a loaded order. A nil order yields ErrOrderNotFound.
func (g TenantGuard) Order(caller shared.Caller, order *Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	return g.Check(caller, order.TenantID)
}

// Partner checks a loaded partner. A nil partner yields ErrPartnerNotFound.
func (g TenantGuard) Partner(caller shared.Caller, partner *Partner) error {
	if partner == nil {
		return ErrPartnerNotFound
	}
	return g.Check(caller, partner.TenantID)
}

// Payment checks a loaded payment. A nil payment yields ErrPaymentNotFound.
func (g TenantGuard) Payment(caller shared.Caller, payment *Payment) error {
	if payment == nil {
		return ErrPaymentNotFound
	}
	return g.Check(caller, payment.TenantID)
}
