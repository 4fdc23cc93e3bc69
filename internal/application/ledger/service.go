// Package ledger implements the payment allocation use cases: allocating a
// payment to an order, reversing it, the administrative hard delete and the
// read-only query surface.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/laundrydesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// FaultReporter receives data-consistency faults. telemetry.FaultReporter
// forwards them to Sentry.
type FaultReporter interface {
	Report(ctx context.Context, code string, err error, tags map[string]string)
}

// Dependencies bundles the collaborators shared by the ledger services.
// Events, Faults and Metrics are optional.
type Dependencies struct {
	Store   ledger.LedgerStore
	Events  shared.EventPublisher
	Faults  FaultReporter
	Metrics *telemetry.LedgerMetrics
	Now     func() time.Time
}

func (d Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// callerFrom returns the authenticated caller or ErrUnauthorized
func callerFrom(ctx context.Context) (shared.Caller, error) {
	caller, ok := shared.CallerFromContext(ctx)
	if !ok {
		return shared.Caller{}, shared.ErrUnauthorized
	}
	return caller, nil
}

// publish hands committed events to the bus. The ledger change is already
// durable, so a publish failure is only logged.
func (d Dependencies) publish(ctx context.Context, events ...shared.DomainEvent) {
	if d.Events == nil || len(events) == 0 {
		return
	}
	if err := d.Events.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish ledger events", zap.Error(err))
	}
}

// finish records the operation metric and reports consistency faults
func (d Dependencies) finish(ctx context.Context, operation string, started time.Time, err error, tags map[string]string) {
	d.Metrics.RecordOperation(ctx, operation, started, err)

	var fault *ledger.ConsistencyError
	if !errors.As(err, &fault) {
		return
	}
	if d.Faults != nil {
		d.Faults.Report(ctx, fault.Code, err, tags)
		return
	}
	d.Metrics.RecordConsistencyFault(ctx, fault.Code)
	logger.L(ctx).Error("Ledger consistency fault",
		zap.String("code", fault.Code),
		zap.Any("tags", tags),
		zap.Error(err))
}
