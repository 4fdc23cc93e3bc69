package persistence

import (
	"context"

	"github.com/laundrydesk/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormLedgerStore implements ledger.LedgerStore on a GORM transaction
type GormLedgerStore struct {
	db        *gorm.DB
	sequences *GormSequenceService
}

// NewGormLedgerStore creates a new GormLedgerStore. sequences is rebound to
// every transaction the store opens.
func NewGormLedgerStore(db *gorm.DB, sequences *GormSequenceService) *GormLedgerStore {
	return &GormLedgerStore{db: db, sequences: sequences}
}

// Transaction runs fn in one database transaction. Returning an error from
// fn rolls everything back.
func (s *GormLedgerStore) Transaction(ctx context.Context, fn func(tx ledger.LedgerTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormLedgerTx(tx, s.sequences.WithDB(tx)))
	})
}

// gormLedgerTx hands out repositories bound to one transaction
type gormLedgerTx struct {
	orders   *GormOrderRepository
	payments *GormPaymentRepository
	entries  *GormAllocationEntryRepository
	partners *GormPartnerRepository
	seq      *GormSequenceService
}

func newGormLedgerTx(tx *gorm.DB, seq *GormSequenceService) *gormLedgerTx {
	return &gormLedgerTx{
		orders:   NewGormOrderRepository(tx),
		payments: NewGormPaymentRepository(tx),
		entries:  NewGormAllocationEntryRepository(tx),
		partners: NewGormPartnerRepository(tx),
		seq:      seq,
	}
}

func (t *gormLedgerTx) Orders() ledger.OrderRepository { return t.orders }
func (t *gormLedgerTx) Payments() ledger.PaymentRepository { return t.payments }
func (t *gormLedgerTx) Entries() ledger.AllocationEntryRepository { return t.entries }
func (t *gormLedgerTx) Partners() ledger.PartnerRepository { return t.partners }
func (t *gormLedgerTx) Sequences() ledger.SequenceService { return t.seq }

var (
	_ ledger.LedgerStore = (*GormLedgerStore)(nil)
	_ ledger.LedgerTx    = (*gormLedgerTx)(nil)
)
