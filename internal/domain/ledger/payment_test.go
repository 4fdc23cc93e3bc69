package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T, amount int64) *Payment {
	t.Helper()
	p, err := NewPayment(uuid.New(), uuid.New(), uuid.New(), "PAY-000001",
		decimal.NewFromInt(amount), PaymentMethodCash, time.Now(), "first visit")
	require.NoError(t, err)
	return p
}

func TestPaymentMethod_IsValid(t *testing.T) {
	for _, m := range AllPaymentMethods() {
		t.Run(m.String(), func(t *testing.T) {
			assert.True(t, m.IsValid())
		})
	}
	assert.False(t, PaymentMethod("CHEQUE").IsValid())
	assert.False(t, PaymentMethod("").IsValid())
}

func TestNewPayment(t *testing.T) {
	tenantID, partnerID, orderID := uuid.New(), uuid.New(), uuid.New()

	t.Run("creates payment", func(t *testing.T) {
		date := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		p, err := NewPayment(tenantID, partnerID, orderID, "PAY-000007",
			decimal.NewFromInt(250_000), PaymentMethodBankTransfer, date, "  transfer ref 99 ")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, tenantID, p.TenantID)
		assert.Equal(t, partnerID, p.PartnerID)
		require.NotNil(t, p.OrderID)
		assert.Equal(t, orderID, *p.OrderID)
		assert.Equal(t, "PAY-000007", p.PaymentCode)
		assert.True(t, decimal.NewFromInt(250_000).Equal(p.Amount))
		assert.Equal(t, date, p.PaymentDate)
		assert.Equal(t, "transfer ref 99", p.Note)
		assert.Equal(t, 1, p.Version)
	})

	t.Run("defaults payment date", func(t *testing.T) {
		p, err := NewPayment(tenantID, partnerID, orderID, "PAY-000008",
			decimal.NewFromInt(1), PaymentMethodCash, time.Time{}, "")
		require.NoError(t, err)
		assert.False(t, p.PaymentDate.IsZero())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		for _, amount := range []int64{0, -10} {
			_, err := NewPayment(tenantID, partnerID, orderID, "PAY-1",
				decimal.NewFromInt(amount), PaymentMethodCash, time.Now(), "")
			assert.ErrorIs(t, err, ErrInvalidAmount)
		}
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := NewPayment(tenantID, partnerID, orderID, "PAY-1",
			decimal.NewFromInt(10), PaymentMethod("BARTER"), time.Now(), "")
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewPayment(tenantID, partnerID, orderID, "",
			decimal.NewFromInt(10), PaymentMethodCash, time.Now(), "")
		assert.Error(t, err)
	})
}

func TestPayment_AppendNote(t *testing.T) {
	at := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

	t.Run("appends without overwriting", func(t *testing.T) {
		p := newTestPayment(t, 100)
		p.AppendNote("customer disputed charge", at)

		lines := strings.Split(p.Note, "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "first visit", lines[0])
		assert.Equal(t, "[2026-05-04T09:30:00Z] customer disputed charge", lines[1])
	})

	t.Run("empty note gets single line", func(t *testing.T) {
		p := newTestPayment(t, 100)
		p.Note = ""
		p.AppendNote("wrong order", at)
		assert.Equal(t, "[2026-05-04T09:30:00Z] wrong order", p.Note)
	})

	t.Run("blank reason is ignored", func(t *testing.T) {
		p := newTestPayment(t, 100)
		p.AppendNote("   ", at)
		assert.Equal(t, "first visit", p.Note)
	})
}
