package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func entry(orderID uuid.UUID, amount int64) AllocationEntry {
	return AllocationEntry{
		ID:              uuid.New(),
		PaymentID:       uuid.New(),
		OrderID:         orderID,
		AmountAllocated: decimal.NewFromInt(amount),
	}
}

// ============================================
// Recompute Tests
// ============================================

func TestRecompute(t *testing.T) {
	orderID := uuid.New()
	total := decimal.NewFromInt(500_000)

	tests := []struct {
		name     string
		entries  []AllocationEntry
		paid     int64
		residual int64
		status   PaymentStatus
	}{
		{"no entries", nil, 0, 500_000, PaymentStatusUnpaid},
		{"partial", []AllocationEntry{entry(orderID, 300_000)}, 300_000, 200_000, PaymentStatusPartiallyPaid},
		{"exactly paid", []AllocationEntry{entry(orderID, 300_000), entry(orderID, 200_000)}, 500_000, 0, PaymentStatusPaid},
		{"reversal back to unpaid", []AllocationEntry{entry(orderID, 300_000), entry(orderID, -300_000)}, 0, 500_000, PaymentStatusUnpaid},
		{"reversal keeps other payment", []AllocationEntry{
			entry(orderID, 300_000), entry(orderID, 200_000), entry(orderID, -300_000),
		}, 200_000, 300_000, PaymentStatusPartiallyPaid},
		{"overpaid is not floored", []AllocationEntry{entry(orderID, 600_000)}, 600_000, -100_000, PaymentStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := Recompute(total, tt.entries)
			assert.True(t, decimal.NewFromInt(tt.paid).Equal(totals.PaidAmount), "paid: %s", totals.PaidAmount)
			assert.True(t, decimal.NewFromInt(tt.residual).Equal(totals.Residual), "residual: %s", totals.Residual)
			assert.Equal(t, tt.status, totals.PaymentStatus)
		})
	}
}

func TestRecompute_ConservesSum(t *testing.T) {
	orderID := uuid.New()
	entries := []AllocationEntry{
		entry(orderID, 120),
		entry(orderID, 80),
		entry(orderID, -120),
		entry(orderID, 45),
	}

	totals := Recompute(decimal.NewFromInt(1000), entries)

	assert.True(t, SumAllocated(entries).Equal(totals.PaidAmount))
	assert.True(t, decimal.NewFromInt(1000).Sub(totals.PaidAmount).Equal(totals.Residual))
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		paid     int64
		residual int64
		want     PaymentStatus
	}{
		{"residual zero", 100, 0, PaymentStatusPaid},
		{"residual negative", 150, -50, PaymentStatusPaid},
		{"paid positive with residual", 40, 60, PaymentStatusPartiallyPaid},
		{"nothing paid", 0, 100, PaymentStatusUnpaid},
		{"zero total order", 0, 0, PaymentStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(decimal.NewFromInt(tt.paid), decimal.NewFromInt(tt.residual))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapAllocation(t *testing.T) {
	assert.True(t, decimal.NewFromInt(200_000).Equal(
		CapAllocation(decimal.NewFromInt(200_000), decimal.NewFromInt(250_000))))
	assert.True(t, decimal.NewFromInt(300_000).Equal(
		CapAllocation(decimal.NewFromInt(500_000), decimal.NewFromInt(300_000))))
}

func TestOrder_ApplyTotals(t *testing.T) {
	order := &Order{TotalPrice: decimal.NewFromInt(500_000), PaymentStatus: PaymentStatusUnpaid}
	order.ApplyTotals(order.Totals([]AllocationEntry{entry(order.ID, 300_000)}))

	assert.True(t, decimal.NewFromInt(300_000).Equal(order.PaidAmount))
	assert.True(t, decimal.NewFromInt(200_000).Equal(order.Residual))
	assert.Equal(t, PaymentStatusPartiallyPaid, order.PaymentStatus)
	assert.False(t, order.UpdatedAt.IsZero())
}
