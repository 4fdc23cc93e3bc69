package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Ledger operation names used as the operation attribute
const (
	OperationAllocate   = "allocate"
	OperationCancel     = "cancel"
	OperationHardDelete = "hard_delete"
)

// Metric attribute keys
var (
	AttrTenantID      = attribute.Key("tenant_id")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrPaymentStatus = attribute.Key("payment_status")
	AttrOperation     = attribute.Key("operation")
	AttrOutcome       = attribute.Key("outcome")
	AttrFaultCode     = attribute.Key("fault_code")
)

// operationBuckets cover a row-locked transaction, in seconds
var operationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1}

// LedgerMetrics records business metrics for payment allocation. A nil
// *LedgerMetrics records nothing.
type LedgerMetrics struct {
	payments          metric.Int64Counter
	allocatedAmount   metric.Float64Histogram
	operationDuration metric.Float64Histogram
	operationFailures metric.Int64Counter
	consistencyFaults metric.Int64Counter
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	payments, err1 := meter.Int64Counter("ledger_payments_total",
		metric.WithDescription("Payments allocated, cancelled or hard deleted, by operation"),
		metric.WithUnit("{payment}"))
	allocated, err2 := meter.Float64Histogram("ledger_allocated_amount",
		metric.WithDescription("Amount applied to the order per allocation"),
		metric.WithUnit("1"))
	duration, err3 := meter.Float64Histogram("ledger_operation_duration_seconds",
		metric.WithDescription("Duration of ledger write operations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(operationBuckets...))
	failures, err4 := meter.Int64Counter("ledger_operation_failures_total",
		metric.WithDescription("Ledger write operations that returned an error"),
		metric.WithUnit("{operation}"))
	faults, err5 := meter.Int64Counter("ledger_consistency_faults_total",
		metric.WithDescription("Ledger data found contradicting its invariants"),
		metric.WithUnit("{fault}"))
	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return nil, err
	}

	return &LedgerMetrics{
		payments:          payments,
		allocatedAmount:   allocated,
		operationDuration: duration,
		operationFailures: failures,
		consistencyFaults: faults,
	}, nil
}

// RecordAllocation records one committed allocation
func (m *LedgerMetrics) RecordAllocation(ctx context.Context, tenantID uuid.UUID, method, status string, allocated decimal.Decimal) {
	if m == nil {
		return
	}
	m.payments.Add(ctx, 1, metric.WithAttributes(
		AttrOperation.String(OperationAllocate),
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
		AttrPaymentStatus.String(status),
	))
	m.allocatedAmount.Record(ctx, allocated.InexactFloat64(), metric.WithAttributes(AttrPaymentMethod.String(method)))
}

// RecordCancellation records one committed reversal
func (m *LedgerMetrics) RecordCancellation(ctx context.Context, tenantID uuid.UUID, method string) {
	if m == nil {
		return
	}
	m.payments.Add(ctx, 1, metric.WithAttributes(
		AttrOperation.String(OperationCancel),
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
	))
}

// RecordHardDelete records one administrative delete
func (m *LedgerMetrics) RecordHardDelete(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.payments.Add(ctx, 1, metric.WithAttributes(
		AttrOperation.String(OperationHardDelete),
		AttrTenantID.String(tenantID.String()),
	))
}

// RecordOperation records the duration and outcome of a ledger operation
func (m *LedgerMetrics) RecordOperation(ctx context.Context, operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		m.operationFailures.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation)))
	}
	m.operationDuration.Record(ctx, time.Since(started).Seconds(), metric.WithAttributes(
		AttrOperation.String(operation),
		AttrOutcome.String(outcome),
	))
}

// RecordConsistencyFault counts a data-consistency fault
func (m *LedgerMetrics) RecordConsistencyFault(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.consistencyFaults.Add(ctx, 1, metric.WithAttributes(AttrFaultCode.String(code)))
}
