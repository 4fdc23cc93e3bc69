package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPaymentQueryRepository(t *testing.T) {
	db := setupLedgerTestDB(t)
	payments := NewGormPaymentRepository(db)
	entries := NewGormAllocationEntryRepository(db)
	repo := NewGormPaymentQueryRepository(db)

	tenantA := uuid.New()
	tenantB := uuid.New()
	partnerA := seedPartner(t, db, tenantA, "Eve")
	partnerB := seedPartner(t, db, tenantB, "Frank")
	orderA := seedOrder(t, db, tenantA, &partnerA, "SO-A1", 100)
	orderB := seedOrder(t, db, tenantB, &partnerB, "SO-B1", 100)

	bg := context.Background()

	cancelled := newTestPayment(t, tenantA, partnerA, orderA, "PAY-000001", 50)
	require.NoError(t, payments.Create(bg, cancelled))
	entry, err := ledger.NewAllocationEntry(tenantA, cancelled.ID, orderA, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, entries.Append(bg, entry, entry.Reverse()))

	active := newTestPayment(t, tenantA, partnerA, orderA, "PAY-000002", 80)
	active.Method = ledger.PaymentMethodCard
	require.NoError(t, payments.Create(bg, active))
	entry2, err := ledger.NewAllocationEntry(tenantA, active.ID, orderA, decimal.NewFromInt(80))
	require.NoError(t, err)
	require.NoError(t, entries.Append(bg, entry2))

	foreign := newTestPayment(t, tenantB, partnerB, orderB, "PAY-000001", 30)
	require.NoError(t, payments.Create(bg, foreign))

	t.Run("get view joins display fields", func(t *testing.T) {
		view, err := repo.GetView(bg, cancelled.ID)
		require.NoError(t, err)
		require.NotNil(t, view)

		assert.Equal(t, "SO-A1", view.OrderCode)
		assert.Equal(t, "Eve", view.PartnerName)
		assert.True(t, view.NetAllocated.IsZero(), view.NetAllocated.String())
		assert.True(t, view.Cancelled)
	})

	t.Run("get view of missing payment", func(t *testing.T) {
		view, err := repo.GetView(bg, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, view)
	})

	t.Run("list requires a caller", func(t *testing.T) {
		_, _, err := repo.List(bg, ledger.PaymentFilter{Filter: shared.DefaultFilter()})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("member lists own tenant only", func(t *testing.T) {
		ctx := shared.WithCaller(bg, shared.Caller{TenantID: tenantA})
		views, total, err := repo.List(ctx, ledger.PaymentFilter{Filter: shared.DefaultFilter()})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, views, 2)
		for _, v := range views {
			assert.Equal(t, tenantA, v.TenantID)
		}
	})

	t.Run("filters by method", func(t *testing.T) {
		ctx := shared.WithCaller(bg, shared.Caller{TenantID: tenantA})
		method := ledger.PaymentMethodCard
		views, total, err := repo.List(ctx, ledger.PaymentFilter{Filter: shared.DefaultFilter(), Method: &method})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, views, 1)
		assert.Equal(t, "PAY-000002", views[0].PaymentCode)
		assert.False(t, views[0].Cancelled)
		assert.True(t, views[0].NetAllocated.Equal(decimal.NewFromInt(80)))
	})

	t.Run("filters by date range", func(t *testing.T) {
		ctx := shared.WithCaller(bg, shared.Caller{TenantID: tenantA})
		future := time.Now().Add(24 * time.Hour)
		_, total, err := repo.List(ctx, ledger.PaymentFilter{Filter: shared.DefaultFilter(), DateFrom: &future})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("super admin lists every tenant", func(t *testing.T) {
		ctx := shared.WithCaller(bg, shared.Caller{SuperAdmin: true})
		_, total, err := repo.List(ctx, ledger.PaymentFilter{Filter: shared.DefaultFilter()})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("paginates", func(t *testing.T) {
		ctx := shared.WithCaller(bg, shared.Caller{SuperAdmin: true})
		filter := shared.DefaultFilter()
		filter.PageSize = 2
		filter.Page = 2
		filter.OrderBy = "payment_code"
		filter.OrderDir = "asc"
		views, total, err := repo.List(ctx, ledger.PaymentFilter{Filter: filter})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, views, 1)
	})
}

func TestPaymentOrder(t *testing.T) {
	tests := []struct {
		orderBy, orderDir string
		wantColumn        string
		wantDir           string
	}{
		{"amount", "asc", "p.amount", "ASC"},
		{" payment_date ", " ASC ", "p.payment_date", "ASC"},
		{"", "", "p.created_at", "DESC"},
		{"note", "desc", "p.created_at", "DESC"},
		{"amount DESC, (SELECT 1)", "asc; DROP TABLE payments", "p.created_at", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.orderBy+"/"+tt.orderDir, func(t *testing.T) {
			column, dir := paymentOrder(tt.orderBy, tt.orderDir)
			assert.Equal(t, tt.wantColumn, column)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}
