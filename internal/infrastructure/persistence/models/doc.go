// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns (BaseModel, TenantAggregateModel)
//   - ledger.go: orders, partners, payments, allocation entries, sequences
package models
