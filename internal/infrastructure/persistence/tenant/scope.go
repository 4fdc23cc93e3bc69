// Package tenant provides tenant scoping for GORM queries.
//
// Ledger mutations resolve ownership explicitly through the domain guard, so
// scoping here applies only to listings:
//
//	db.WithContext(ctx).Scopes(tenant.ForCaller(caller, "p")).Find(&rows)
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a scoped query has no tenant to filter by
var ErrTenantIDRequired = errors.New("tenant_id is required for a scoped query")

// TenantScope applies tenant filtering to GORM queries
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return Column("tenant_id", tenantID)
}

// Column applies tenant filtering on a qualified column such as "p.tenant_id".
// A nil tenant ID adds ErrTenantIDRequired to the statement.
func Column(column string, tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(column+" = ?", tenantID)
	}
}

// ForCaller restricts a listing to what the caller may see. Super-admins see
// every tenant unless tenantID narrows the listing. alias qualifies the column
// and may be empty.
func ForCaller(caller shared.Caller, tenantID *uuid.UUID, alias string) func(db *gorm.DB) *gorm.DB {
	column := "tenant_id"
	if alias != "" {
		column = alias + ".tenant_id"
	}
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case caller.SuperAdmin && tenantID == nil:
			return db
		case caller.SuperAdmin:
			return Column(column, *tenantID)(db)
		case tenantID != nil && *tenantID != caller.TenantID:
			_ = db.AddError(shared.ErrForbidden)
			return db
		default:
			return Column(column, caller.TenantID)(db)
		}
	}
}
