package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

const nextSequenceSQL = `
INSERT INTO sequences (tenant_id, scope, last_value, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (tenant_id, scope)
DO UPDATE SET last_value = sequences.last_value + 1, updated_at = excluded.updated_at
RETURNING last_value`

// GormSequenceService implements ledger.SequenceService with one counter row
// per tenant and scope. The upsert is atomic, so concurrent callers never
// receive the same value. Bound to a transaction with WithDB, the counter row
// stays locked until commit and a rollback hands the value back.
type GormSequenceService struct {
	db       *gorm.DB
	prefixes map[string]string
	digits   int
}

// NewGormSequenceService creates a sequence service. prefixes maps a scope to
// its code prefix; unknown scopes use the upper-cased scope name.
func NewGormSequenceService(db *gorm.DB, prefixes map[string]string, digits int) *GormSequenceService {
	if digits <= 0 {
		digits = 6
	}
	return &GormSequenceService{db: db, prefixes: prefixes, digits: digits}
}

// WithDB returns a copy of the service that runs on db, typically an open
// transaction
func (s *GormSequenceService) WithDB(db *gorm.DB) *GormSequenceService {
	return &GormSequenceService{db: db, prefixes: s.prefixes, digits: s.digits}
}

// NextRef returns the next code for scope within tenantID, e.g. PAY-000042
func (s *GormSequenceService) NextRef(ctx context.Context, scope string, tenantID uuid.UUID) (string, error) {
	var value int64
	if err := s.db.WithContext(ctx).
		Raw(nextSequenceSQL, tenantID, scope, time.Now()).
		Scan(&value).Error; err != nil {
		return "", fmt.Errorf("failed to advance sequence %s: %w", scope, err)
	}
	return fmt.Sprintf("%s-%0*d", s.prefix(scope), s.digits, value), nil
}

func (s *GormSequenceService) prefix(scope string) string {
	if p, ok := s.prefixes[scope]; ok {
		return p
	}
	return strings.ToUpper(scope)
}

var _ ledger.SequenceService = (*GormSequenceService)(nil)
