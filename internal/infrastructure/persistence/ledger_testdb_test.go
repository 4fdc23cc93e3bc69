package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLedgerTestDB creates an in-memory SQLite database with the ledger tables
func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// a single connection keeps every statement on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	statements := []string{
		`CREATE TABLE partners (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE orders (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			partner_id TEXT,
			code TEXT NOT NULL,
			status TEXT NOT NULL,
			total_price NUMERIC NOT NULL DEFAULT 0,
			paid_amount NUMERIC NOT NULL DEFAULT 0,
			residual NUMERIC NOT NULL DEFAULT 0,
			payment_status TEXT NOT NULL DEFAULT 'unpaid',
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE payments (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			partner_id TEXT NOT NULL,
			order_id TEXT,
			payment_code TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			method TEXT NOT NULL,
			payment_date DATETIME NOT NULL,
			note TEXT,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(tenant_id, payment_code)
		)`,
		`CREATE TABLE allocation_entries (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			payment_id TEXT NOT NULL,
			order_id TEXT NOT NULL,
			amount_allocated NUMERIC NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE sequences (
			tenant_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			last_value INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (tenant_id, scope)
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedPartner(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now()
	require.NoError(t, db.Exec(
		`INSERT INTO partners (id, tenant_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, tenantID, name, now, now,
	).Error)
	return id
}

func seedOrder(t *testing.T, db *gorm.DB, tenantID uuid.UUID, partnerID *uuid.UUID, code string, total int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now()
	require.NoError(t, db.Exec(
		`INSERT INTO orders (id, tenant_id, partner_id, code, status, total_price, paid_amount, residual, payment_status, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'confirmed', ?, 0, ?, 'unpaid', 1, ?, ?)`,
		id, tenantID, partnerID, code, total, total, now, now,
	).Error)
	return id
}
