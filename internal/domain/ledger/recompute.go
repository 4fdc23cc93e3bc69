package ledger

import "github.com/shopspring/decimal"

// Totals is the projection of an order's ledger onto its money fields
type Totals struct {
	PaidAmount    decimal.Decimal
	Residual      decimal.Decimal
	PaymentStatus PaymentStatus
}

// Recompute folds every entry of an order (positive and negative) into its
// paid amount and residual. Residual is not floored at zero.
func Recompute(totalPrice decimal.Decimal, entries []AllocationEntry) Totals {
	paid := decimal.Zero
	for _, e := range entries {
		paid = paid.Add(e.AmountAllocated)
	}
	residual := totalPrice.Sub(paid)
	return Totals{
		PaidAmount:    paid,
		Residual:      residual,
		PaymentStatus: DeriveStatus(paid, residual),
	}
}

// DeriveStatus maps paid/residual onto a payment status:
// paid iff residual <= 0, partially_paid iff paid > 0, else unpaid.
func DeriveStatus(paid, residual decimal.Decimal) PaymentStatus {
	switch {
	case residual.LessThanOrEqual(decimal.Zero):
		return PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusUnpaid
	}
}

// CapAllocation returns how much of amount may be applied against residual.
// The caller must have rejected residual <= 0 beforehand.
func CapAllocation(residual, amount decimal.Decimal) decimal.Decimal {
	return decimal.Min(residual, amount)
}
