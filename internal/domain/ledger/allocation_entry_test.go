package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocationEntry(t *testing.T) {
	tenantID, paymentID, orderID := uuid.New(), uuid.New(), uuid.New()

	e, err := NewAllocationEntry(tenantID, paymentID, orderID, decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.IsReversal())
	assert.False(t, e.CreatedAt.IsZero())

	_, err = NewAllocationEntry(tenantID, paymentID, orderID, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAllocationEntry_Reverse(t *testing.T) {
	original, err := NewAllocationEntry(uuid.New(), uuid.New(), uuid.New(), decimal.RequireFromString("123.45"))
	require.NoError(t, err)

	reversal := original.Reverse()

	assert.NotEqual(t, original.ID, reversal.ID)
	assert.Equal(t, original.PaymentID, reversal.PaymentID)
	assert.Equal(t, original.OrderID, reversal.OrderID)
	assert.Equal(t, original.TenantID, reversal.TenantID)
	assert.True(t, reversal.IsReversal())
	assert.True(t, original.AmountAllocated.Add(reversal.AmountAllocated).IsZero())
}

func TestEntryHelpers(t *testing.T) {
	orderA, orderB := uuid.New(), uuid.New()
	entries := []AllocationEntry{
		entry(orderA, 100),
		entry(orderB, 50),
		entry(orderA, 25),
	}

	t.Run("HasReversal", func(t *testing.T) {
		assert.False(t, HasReversal(entries))
		assert.True(t, HasReversal(append(entries, entry(orderA, -100))))
	})

	t.Run("PositiveEntries", func(t *testing.T) {
		mixed := append([]AllocationEntry{entry(orderA, -5)}, entries...)
		assert.Len(t, PositiveEntries(mixed), 3)
	})

	t.Run("SumAllocated", func(t *testing.T) {
		assert.True(t, decimal.NewFromInt(175).Equal(SumAllocated(entries)))
	})

	t.Run("GroupByOrder", func(t *testing.T) {
		groups, ids := GroupByOrder(entries)
		require.Len(t, ids, 2)
		assert.Len(t, groups[orderA], 2)
		assert.Len(t, groups[orderB], 1)
		assert.True(t, ids[0].String() < ids[1].String())
	})
}
