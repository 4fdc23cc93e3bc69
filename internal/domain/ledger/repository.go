package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Partner is the customer a payment is received from. Partners are managed
// elsewhere; the ledger only needs to resolve ownership.
type Partner struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
}

// OrderRepository reads and updates the ledger-owned fields of orders
type OrderRepository interface {
	// FindByID finds an order by ID regardless of tenant. Returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order and holds a row lock until the
	// surrounding transaction ends. Returns nil, nil when absent.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// UpdateTotals persists PaidAmount, Residual and PaymentStatus.
	// Fails with a concurrency conflict when the version has moved.
	UpdateTotals(ctx context.Context, order *Order) error
}

// PaymentRepository persists payments
type PaymentRepository interface {
	// FindByID finds a payment by ID regardless of tenant. Returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForUpdate finds a payment and locks its row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)

	// Create inserts a new payment
	Create(ctx context.Context, payment *Payment) error

	// UpdateNote persists the payment note
	UpdateNote(ctx context.Context, payment *Payment) error

	// Delete removes the payment row. Used only by the administrative path.
	Delete(ctx context.Context, id uuid.UUID) error

	// SumAmountByOrder sums Amount over the payments tendered against an order
	SumAmountByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (decimal.Decimal, error)
}

// AllocationEntryRepository is the append-only ledger store
type AllocationEntryRepository interface {
	// FindByOrder returns every entry of an order in creation order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]AllocationEntry, error)

	// FindByPayment returns every entry of a payment in creation order
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]AllocationEntry, error)

	// Append inserts new entries. There is no update or delete.
	Append(ctx context.Context, entries ...AllocationEntry) error
}

// PartnerRepository resolves partners
type PartnerRepository interface {
	// FindByID finds a partner by ID regardless of tenant. Returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)
}

// LedgerTx exposes repositories bound to one database transaction
type LedgerTx interface {
	Orders() OrderRepository
	Payments() PaymentRepository
	Entries() AllocationEntryRepository
	Partners() PartnerRepository
	// Sequences draws codes on the same transaction, so a rollback
	// returns the value
	Sequences() SequenceService
}

// LedgerStore runs ledger mutations atomically. Everything fn does through
// tx commits together or not at all.
type LedgerStore interface {
	Transaction(ctx context.Context, fn func(tx LedgerTx) error) error
}

// SequenceService produces human-readable codes, monotonically increasing
// per tenant and scope
type SequenceService interface {
	NextRef(ctx context.Context, scope string, tenantID uuid.UUID) (string, error)
}

// PaymentView is the read projection of a payment with display fields
type PaymentView struct {
	Payment
	OrderCode    string
	PartnerName  string
	NetAllocated decimal.Decimal
	Cancelled    bool
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	shared.Filter
	// TenantID is nil only for super-admin listings across tenants
	TenantID  *uuid.UUID
	OrderID   *uuid.UUID
	PartnerID *uuid.UUID
	Method    *PaymentMethod
	DateFrom  *time.Time
	DateTo    *time.Time
}

// PaymentQueryRepository serves read-only payment projections
type PaymentQueryRepository interface {
	// GetView returns one payment projection. Returns nil, nil when absent.
	GetView(ctx context.Context, id uuid.UUID) (*PaymentView, error)

	// List returns a page of payment projections and the total count
	List(ctx context.Context, filter PaymentFilter) ([]PaymentView, int64, error)
}
