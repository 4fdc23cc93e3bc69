package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ledger.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an order with SELECT ... FOR UPDATE
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormOrderRepository) find(db *gorm.DB, id uuid.UUID) (*ledger.Order, error) {
	var model models.OrderModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateTotals writes the ledger-owned money fields with a version check.
// On success the order's version is advanced.
func (r *GormOrderRepository) UpdateTotals(ctx context.Context, order *ledger.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"paid_amount":    order.PaidAmount,
			"residual":       order.Residual,
			"payment_status": order.PaymentStatus,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	order.IncrementVersion()
	return nil
}

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a payment with SELECT ... FOR UPDATE
func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPaymentRepository) find(db *gorm.DB, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// UpdateNote persists the payment note with a version check
func (r *GormPaymentRepository) UpdateNote(ctx context.Context, payment *ledger.Payment) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ? AND version = ?", payment.ID, payment.Version).
		Updates(map[string]any{
			"note":       payment.Note,
			"version":    gorm.Expr("version + 1"),
			"updated_at": payment.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	payment.IncrementVersion()
	return nil
}

// Delete removes a payment row
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrPaymentNotFound
	}
	return nil
}

// SumAmountByOrder sums the tendered amount of the payments recorded against an order
func (r *GormPaymentRepository) SumAmountByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("SUM(amount)").
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// GormAllocationEntryRepository implements ledger.AllocationEntryRepository using GORM.
// It only ever inserts and reads.
type GormAllocationEntryRepository struct {
	db *gorm.DB
}

// NewGormAllocationEntryRepository creates a new GormAllocationEntryRepository
func NewGormAllocationEntryRepository(db *gorm.DB) *GormAllocationEntryRepository {
	return &GormAllocationEntryRepository{db: db}
}

// FindByOrder returns all entries of an order, oldest first
func (r *GormAllocationEntryRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ledger.AllocationEntry, error) {
	return r.findBy(ctx, "order_id = ?", orderID)
}

// FindByPayment returns all entries of a payment, oldest first
func (r *GormAllocationEntryRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]ledger.AllocationEntry, error) {
	return r.findBy(ctx, "payment_id = ?", paymentID)
}

func (r *GormAllocationEntryRepository) findBy(ctx context.Context, cond string, id uuid.UUID) ([]ledger.AllocationEntry, error) {
	var rows []models.AllocationEntryModel
	if err := r.db.WithContext(ctx).
		Where(cond, id).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.AllocationEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Append inserts entries in one statement
func (r *GormAllocationEntryRepository) Append(ctx context.Context, entries ...ledger.AllocationEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.AllocationEntryModel, len(entries))
	for i, e := range entries {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}
		rows[i] = models.AllocationEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// GormPartnerRepository implements ledger.PartnerRepository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// FindByID finds a partner by ID
func (r *GormPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Partner, error) {
	var model models.PartnerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure interfaces are implemented
var (
	_ ledger.OrderRepository           = (*GormOrderRepository)(nil)
	_ ledger.PaymentRepository         = (*GormPaymentRepository)(nil)
	_ ledger.AllocationEntryRepository = (*GormAllocationEntryRepository)(nil)
	_ ledger.PartnerRepository         = (*GormPartnerRepository)(nil)
)
