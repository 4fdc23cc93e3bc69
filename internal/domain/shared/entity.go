package shared

import (
	"time"

	"github.com/google/uuid"
)

// TenantAggregateRoot holds the identity and audit fields of a record owned
// by exactly one company. Version guards updates: a write against a stale
// version fails with ErrConcurrencyConflict.
type TenantAggregateRoot struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTenantAggregateRoot stamps a new record for tenantID at version 1
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	now := time.Now()
	return TenantAggregateRoot{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the update timestamp
func (a *TenantAggregateRoot) Touch() {
	a.UpdatedAt = time.Now()
}

// IncrementVersion records a successful versioned write
func (a *TenantAggregateRoot) IncrementVersion() {
	a.Version++
}
