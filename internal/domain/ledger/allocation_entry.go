package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationEntry links one payment to one order with a signed amount.
// Positive entries apply money, negative entries reverse a prior positive
// entry for the same pair. Entries are never updated or deleted.
type AllocationEntry struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	PaymentID       uuid.UUID
	OrderID         uuid.UUID
	AmountAllocated decimal.Decimal
	CreatedAt       time.Time
}

// NewAllocationEntry creates a positive allocation entry
func NewAllocationEntry(tenantID, paymentID, orderID uuid.UUID, amount decimal.Decimal) (AllocationEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return AllocationEntry{}, ErrInvalidAmount
	}
	return AllocationEntry{
		ID:              uuid.New(),
		TenantID:        tenantID,
		PaymentID:       paymentID,
		OrderID:         orderID,
		AmountAllocated: amount,
		CreatedAt:       time.Now(),
	}, nil
}

// IsReversal reports whether the entry is a negative (reversal) entry
func (e AllocationEntry) IsReversal() bool {
	return e.AmountAllocated.IsNegative()
}

// Reverse returns a new entry carrying the exact negation of this one
func (e AllocationEntry) Reverse() AllocationEntry {
	return AllocationEntry{
		ID:              uuid.New(),
		TenantID:        e.TenantID,
		PaymentID:       e.PaymentID,
		OrderID:         e.OrderID,
		AmountAllocated: e.AmountAllocated.Neg(),
		CreatedAt:       time.Now(),
	}
}

// HasReversal reports whether any entry is negative
func HasReversal(entries []AllocationEntry) bool {
	for _, e := range entries {
		if e.IsReversal() {
			return true
		}
	}
	return false
}

// PositiveEntries returns the entries with a strictly positive amount
func PositiveEntries(entries []AllocationEntry) []AllocationEntry {
	result := make([]AllocationEntry, 0, len(entries))
	for _, e := range entries {
		if e.AmountAllocated.IsPositive() {
			result = append(result, e)
		}
	}
	return result
}

// SumAllocated returns the net of all entries
func SumAllocated(entries []AllocationEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.AmountAllocated)
	}
	return sum
}

// GroupByOrder buckets entries per order. The returned ids are sorted so that
// callers lock orders in a stable sequence.
func GroupByOrder(entries []AllocationEntry) (map[uuid.UUID][]AllocationEntry, []uuid.UUID) {
	groups := make(map[uuid.UUID][]AllocationEntry)
	orderIDs := make([]uuid.UUID, 0)
	for _, e := range entries {
		if _, ok := groups[e.OrderID]; !ok {
			orderIDs = append(orderIDs, e.OrderID)
		}
		groups[e.OrderID] = append(groups[e.OrderID], e)
	}
	sort.Slice(orderIDs, func(i, j int) bool {
		return orderIDs[i].String() < orderIDs[j].String()
	})
	return groups, orderIDs
}
