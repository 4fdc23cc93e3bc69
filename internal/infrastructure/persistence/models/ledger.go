package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// OrderModel maps the ledger-relevant columns of the orders table.
// Line items and workflow columns belong to order management and are not mapped.
type OrderModel struct {
	TenantAggregateModel
	PartnerID     *uuid.UUID           `gorm:"type:uuid;index"`
	Code          string               `gorm:"type:varchar(50);not null"`
	Status        string               `gorm:"type:varchar(30);not null"`
	TotalPrice    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Residual      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus ledger.PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *ledger.Order {
	return &ledger.Order{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		PartnerID:           m.PartnerID,
		Code:                m.Code,
		Status:              m.Status,
		TotalPrice:          m.TotalPrice,
		PaidAmount:          m.PaidAmount,
		Residual:            m.Residual,
		PaymentStatus:       m.PaymentStatus,
	}
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *ledger.Order) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.PartnerID = o.PartnerID
	m.Code = o.Code
	m.Status = o.Status
	m.TotalPrice = o.TotalPrice
	m.PaidAmount = o.PaidAmount
	m.Residual = o.Residual
	m.PaymentStatus = o.PaymentStatus
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *ledger.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// PartnerModel maps the partners table. Only identity and ownership are read.
type PartnerModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (PartnerModel) TableName() string {
	return "partners"
}

// ToDomain converts the persistence model to a domain Partner
func (m *PartnerModel) ToDomain() *ledger.Partner {
	return &ledger.Partner{
		ID:       m.ID,
		TenantID: m.TenantID,
		Name:     m.Name,
	}
}

// PaymentModel maps the payments table
type PaymentModel struct {
	TenantAggregateModel
	PartnerID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	OrderID     *uuid.UUID           `gorm:"type:uuid;index"`
	PaymentCode string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_tenant_code,priority:2"`
	Amount      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Method      ledger.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentDate time.Time            `gorm:"not null;index"`
	Note        string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		PartnerID:           m.PartnerID,
		OrderID:             m.OrderID,
		PaymentCode:         m.PaymentCode,
		Amount:              m.Amount,
		Method:              m.Method,
		PaymentDate:         m.PaymentDate,
		Note:                m.Note,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.PartnerID = p.PartnerID
	m.OrderID = p.OrderID
	m.PaymentCode = p.PaymentCode
	m.Amount = p.Amount
	m.Method = p.Method
	m.PaymentDate = p.PaymentDate
	m.Note = p.Note
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// AllocationEntryModel maps the append-only allocation_entries table.
// There is no UpdatedAt column: rows are never modified.
type AllocationEntryModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountAllocated decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AllocationEntryModel) TableName() string {
	return "allocation_entries"
}

// ToDomain converts the persistence model to a domain AllocationEntry
func (m *AllocationEntryModel) ToDomain() ledger.AllocationEntry {
	return ledger.AllocationEntry{
		ID:              m.ID,
		TenantID:        m.TenantID,
		PaymentID:       m.PaymentID,
		OrderID:         m.OrderID,
		AmountAllocated: m.AmountAllocated,
		CreatedAt:       m.CreatedAt,
	}
}

// AllocationEntryModelFromDomain creates a persistence model from a domain AllocationEntry
func AllocationEntryModelFromDomain(e ledger.AllocationEntry) AllocationEntryModel {
	return AllocationEntryModel{
		ID:              e.ID,
		TenantID:        e.TenantID,
		PaymentID:       e.PaymentID,
		OrderID:         e.OrderID,
		AmountAllocated: e.AmountAllocated,
		CreatedAt:       e.CreatedAt,
	}
}

// SequenceModel maps the sequences table: one counter per tenant and scope
type SequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Scope     string    `gorm:"type:varchar(50);primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "sequences"
}
