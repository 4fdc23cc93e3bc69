package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/infrastructure/persistence/models"
	"github.com/laundrydesk/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const paymentViewColumns = `p.*,
	COALESCE(o.code, '') AS order_code,
	COALESCE(pt.name, '') AS partner_name,
	COALESCE((SELECT SUM(e.amount_allocated) FROM allocation_entries e WHERE e.payment_id = p.id), 0) AS net_allocated,
	EXISTS (SELECT 1 FROM allocation_entries e WHERE e.payment_id = p.id AND e.amount_allocated < 0) AS cancelled`

// paymentViewRow is the scan target of the payment projection query
type paymentViewRow struct {
	models.PaymentModel
	OrderCode    string
	PartnerName  string
	NetAllocated decimal.Decimal
	Cancelled    bool
}

func (r *paymentViewRow) toDomain() ledger.PaymentView {
	return ledger.PaymentView{
		Payment:      *r.PaymentModel.ToDomain(),
		OrderCode:    r.OrderCode,
		PartnerName:  r.PartnerName,
		NetAllocated: r.NetAllocated,
		Cancelled:    r.Cancelled,
	}
}

// GormPaymentQueryRepository implements ledger.PaymentQueryRepository
type GormPaymentQueryRepository struct {
	db *gorm.DB
}

// NewGormPaymentQueryRepository creates a new GormPaymentQueryRepository
func NewGormPaymentQueryRepository(db *gorm.DB) *GormPaymentQueryRepository {
	return &GormPaymentQueryRepository{db: db}
}

func (r *GormPaymentQueryRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("payments AS p").
		Joins("LEFT JOIN orders o ON o.id = p.order_id").
		Joins("LEFT JOIN partners pt ON pt.id = p.partner_id")
}

// GetView returns one payment projection
func (r *GormPaymentQueryRepository) GetView(ctx context.Context, id uuid.UUID) (*ledger.PaymentView, error) {
	var row paymentViewRow
	if err := r.base(ctx).
		Select(paymentViewColumns).
		Where("p.id = ?", id).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	view := row.toDomain()
	return &view, nil
}

// List returns a page of payment projections visible to the caller in ctx
func (r *GormPaymentQueryRepository) List(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.PaymentView, int64, error) {
	caller, ok := shared.CallerFromContext(ctx)
	if !ok {
		return nil, 0, shared.ErrUnauthorized
	}

	query := r.base(ctx).Scopes(
		tenant.ForCaller(caller, filter.TenantID, "p"),
		applyPaymentFilter(filter),
	)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, dir := paymentOrder(filter.OrderBy, filter.OrderDir)

	var rows []paymentViewRow
	if err := query.
		Select(paymentViewColumns).
		Order(column + " " + dir).
		Order("p.id " + dir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	views := make([]ledger.PaymentView, len(rows))
	for i := range rows {
		views[i] = rows[i].toDomain()
	}
	return views, total, nil
}

// paymentSortColumns are the listing's sortable fields; anything else sorts
// by creation time
var paymentSortColumns = map[string]string{
	"created_at":   "p.created_at",
	"payment_date": "p.payment_date",
	"payment_code": "p.payment_code",
	"amount":       "p.amount",
	"method":       "p.method",
}

// paymentOrder resolves the requested sort, newest first by default. Only
// whitelisted columns and directions reach the SQL.
func paymentOrder(orderBy, orderDir string) (column, dir string) {
	column, ok := paymentSortColumns[strings.TrimSpace(orderBy)]
	if !ok {
		column = paymentSortColumns["created_at"]
	}
	dir = "DESC"
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		dir = "ASC"
	}
	return column, dir
}

func applyPaymentFilter(filter ledger.PaymentFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.OrderID != nil {
			db = db.Where("p.order_id = ?", *filter.OrderID)
		}
		if filter.PartnerID != nil {
			db = db.Where("p.partner_id = ?", *filter.PartnerID)
		}
		if filter.Method != nil {
			db = db.Where("p.method = ?", *filter.Method)
		}
		if filter.DateFrom != nil {
			db = db.Where("p.payment_date >= ?", *filter.DateFrom)
		}
		if filter.DateTo != nil {
			db = db.Where("p.payment_date <= ?", *filter.DateTo)
		}
		return db
	}
}

var _ ledger.PaymentQueryRepository = (*GormPaymentQueryRepository)(nil)
