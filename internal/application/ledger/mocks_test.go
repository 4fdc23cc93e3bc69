package ledger

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock collaborators
// =============================================================================

// MockSequenceService is a mock implementation of ledger.SequenceService
type MockSequenceService struct {
	mock.Mock
}

func (m *MockSequenceService) NextRef(ctx context.Context, scope string, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, scope, tenantID)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockFaultReporter is a mock implementation of FaultReporter
type MockFaultReporter struct {
	mock.Mock
}

func (m *MockFaultReporter) Report(ctx context.Context, code string, err error, tags map[string]string) {
	m.Called(ctx, code, err, tags)
}

// MockBalanceCache is a mock implementation of ledger.BalanceCache
type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) Get(ctx context.Context, orderID uuid.UUID) (*ledger.OrderBalance, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.OrderBalance), args.Error(1)
}

func (m *MockBalanceCache) Set(ctx context.Context, balance *ledger.OrderBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, orderIDs ...uuid.UUID) error {
	args := m.Called(ctx, orderIDs)
	return args.Error(0)
}

// MockPaymentQueryRepository is a mock implementation of ledger.PaymentQueryRepository
type MockPaymentQueryRepository struct {
	mock.Mock
}

func (m *MockPaymentQueryRepository) GetView(ctx context.Context, id uuid.UUID) (*ledger.PaymentView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentView), args.Error(1)
}

func (m *MockPaymentQueryRepository) List(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.PaymentView, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.PaymentView), args.Get(1).(int64), args.Error(2)
}

// =============================================================================
// In-memory ledger store
// =============================================================================

var errInjected = errors.New("injected failure")

// memoryLedger is a LedgerStore keeping state in maps. Transactions run
// serially and roll back by restoring a snapshot when fn fails.
type memoryLedger struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]ledger.Order
	payments map[uuid.UUID]ledger.Payment
	partners map[uuid.UUID]ledger.Partner
	entries  []ledger.AllocationEntry

	sequences        ledger.SequenceService
	failUpdateTotals bool
	transactions     int
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		orders:   make(map[uuid.UUID]ledger.Order),
		payments: make(map[uuid.UUID]ledger.Payment),
		partners: make(map[uuid.UUID]ledger.Partner),
	}
}

func (m *memoryLedger) Transaction(ctx context.Context, fn func(tx ledger.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions++

	orders := maps.Clone(m.orders)
	payments := maps.Clone(m.payments)
	entries := slices.Clone(m.entries)

	if err := fn(memoryTx{m}); err != nil {
		m.orders, m.payments, m.entries = orders, payments, entries
		return err
	}
	return nil
}

func (m *memoryLedger) addPartner(tenantID uuid.UUID, name string) ledger.Partner {
	p := ledger.Partner{ID: uuid.New(), TenantID: tenantID, Name: name}
	m.partners[p.ID] = p
	return p
}

func (m *memoryLedger) addOrder(tenantID uuid.UUID, partnerID uuid.UUID, total int64) ledger.Order {
	o := ledger.Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PartnerID:           &partnerID,
		Code:                fmt.Sprintf("ORD-%d", len(m.orders)+1),
		Status:              "received",
		TotalPrice:          decimal.NewFromInt(total),
		PaidAmount:          decimal.Zero,
		Residual:            decimal.NewFromInt(total),
		PaymentStatus:       ledger.PaymentStatusUnpaid,
	}
	m.orders[o.ID] = o
	return o
}

func (m *memoryLedger) addPayment(p *ledger.Payment) {
	m.payments[p.ID] = *p
}

func (m *memoryLedger) order(id uuid.UUID) ledger.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memoryLedger) payment(id uuid.UUID) (ledger.Payment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	return p, ok
}

func (m *memoryLedger) entriesFor(match func(ledger.AllocationEntry) bool) []ledger.AllocationEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.AllocationEntry
	for _, e := range m.entries {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (m *memoryLedger) orderEntries(orderID uuid.UUID) []ledger.AllocationEntry {
	return m.entriesFor(func(e ledger.AllocationEntry) bool { return e.OrderID == orderID })
}

func (m *memoryLedger) paymentEntries(paymentID uuid.UUID) []ledger.AllocationEntry {
	return m.entriesFor(func(e ledger.AllocationEntry) bool { return e.PaymentID == paymentID })
}

// memoryTx exposes the store's repositories while its lock is held
type memoryTx struct {
	m *memoryLedger
}

func (tx memoryTx) Orders() ledger.OrderRepository { return memoryOrders{tx.m} }
func (tx memoryTx) Payments() ledger.PaymentRepository { return memoryPayments{tx.m} }
func (tx memoryTx) Entries() ledger.AllocationEntryRepository { return memoryEntries{tx.m} }
func (tx memoryTx) Partners() ledger.PartnerRepository { return memoryPartners{tx.m} }
func (tx memoryTx) Sequences() ledger.SequenceService { return tx.m.sequences }

type memoryOrders struct{ m *memoryLedger }

func (r memoryOrders) FindByID(_ context.Context, id uuid.UUID) (*ledger.Order, error) {
	o, ok := r.m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r memoryOrders) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	return r.FindByID(ctx, id)
}

func (r memoryOrders) UpdateTotals(_ context.Context, order *ledger.Order) error {
	if r.m.failUpdateTotals {
		return errInjected
	}
	stored, ok := r.m.orders[order.ID]
	if !ok {
		return ledger.ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return shared.ErrConcurrencyConflict
	}
	order.Version++
	r.m.orders[order.ID] = *order
	return nil
}

type memoryPayments struct{ m *memoryLedger }

func (r memoryPayments) FindByID(_ context.Context, id uuid.UUID) (*ledger.Payment, error) {
	p, ok := r.m.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memoryPayments) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r memoryPayments) Create(_ context.Context, payment *ledger.Payment) error {
	r.m.payments[payment.ID] = *payment
	return nil
}

func (r memoryPayments) UpdateNote(_ context.Context, payment *ledger.Payment) error {
	stored, ok := r.m.payments[payment.ID]
	if !ok {
		return ledger.ErrPaymentNotFound
	}
	stored.Note = payment.Note
	r.m.payments[payment.ID] = stored
	return nil
}

func (r memoryPayments) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.m.payments[id]; !ok {
		return ledger.ErrPaymentNotFound
	}
	delete(r.m.payments, id)
	return nil
}

func (r memoryPayments) SumAmountByOrder(_ context.Context, tenantID, orderID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.m.payments {
		if p.TenantID == tenantID && p.OrderID != nil && *p.OrderID == orderID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

type memoryEntries struct{ m *memoryLedger }

func (r memoryEntries) FindByOrder(_ context.Context, orderID uuid.UUID) ([]ledger.AllocationEntry, error) {
	var out []ledger.AllocationEntry
	for _, e := range r.m.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memoryEntries) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]ledger.AllocationEntry, error) {
	var out []ledger.AllocationEntry
	for _, e := range r.m.entries {
		if e.PaymentID == paymentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memoryEntries) Append(_ context.Context, entries ...ledger.AllocationEntry) error {
	r.m.entries = append(r.m.entries, entries...)
	return nil
}

type memoryPartners struct{ m *memoryLedger }

func (r memoryPartners) FindByID(_ context.Context, id uuid.UUID) (*ledger.Partner, error) {
	p, ok := r.m.partners[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// memoryReader exposes the read-side repositories outside a transaction
func (m *memoryLedger) reader() QueryRepositories {
	return QueryRepositories{
		Orders:   lockedOrders{m},
		Payments: memoryPayments{m},
		Entries:  memoryEntries{m},
	}
}

type lockedOrders struct{ m *memoryLedger }

func (r lockedOrders) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return memoryOrders(r).FindByID(ctx, id)
}

func (r lockedOrders) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	return r.FindByID(ctx, id)
}

func (r lockedOrders) UpdateTotals(ctx context.Context, order *ledger.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return memoryOrders(r).UpdateTotals(ctx, order)
}

var (
	_ ledger.LedgerStore            = (*memoryLedger)(nil)
	_ ledger.LedgerTx               = memoryTx{}
	_ ledger.OrderRepository        = lockedOrders{}
	_ ledger.BalanceCache           = (*MockBalanceCache)(nil)
	_ ledger.PaymentQueryRepository = (*MockPaymentQueryRepository)(nil)
	_ ledger.SequenceService        = (*MockSequenceService)(nil)
	_ shared.EventPublisher         = (*MockEventPublisher)(nil)
	_ FaultReporter                 = (*MockFaultReporter)(nil)
)
