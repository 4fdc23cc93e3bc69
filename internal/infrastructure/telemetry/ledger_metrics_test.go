package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func newLedgerMetrics(t *testing.T) (*telemetry.LedgerMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	m, err := telemetry.NewLedgerMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("ledger"))
	require.NoError(t, err)
	return m, reader
}

func TestLedgerMetrics_PaymentsByOperation(t *testing.T) {
	m, reader := newLedgerMetrics(t)
	ctx := context.Background()
	tenantID := uuid.New()

	m.RecordAllocation(ctx, tenantID, "CASH", "partially_paid", decimal.NewFromInt(50))
	m.RecordAllocation(ctx, tenantID, "CARD", "paid", decimal.NewFromInt(50))
	m.RecordCancellation(ctx, tenantID, "CASH")
	m.RecordHardDelete(ctx, tenantID)

	metrics := collect(t, reader)
	sum, ok := metrics["ledger_payments_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byOperation := map[string]int64{}
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value(telemetry.AttrOperation)
		byOperation[op.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{
		telemetry.OperationAllocate:   2,
		telemetry.OperationCancel:     1,
		telemetry.OperationHardDelete: 1,
	}, byOperation)

	amounts, ok := metrics["ledger_allocated_amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	var total float64
	for _, dp := range amounts.DataPoints {
		count += dp.Count
		total += dp.Sum
	}
	assert.Equal(t, uint64(2), count)
	assert.Equal(t, 100.0, total)
}

func TestLedgerMetrics_OperationOutcome(t *testing.T) {
	m, reader := newLedgerMetrics(t)
	ctx := context.Background()

	m.RecordOperation(ctx, telemetry.OperationAllocate, time.Now(), nil)
	m.RecordOperation(ctx, telemetry.OperationCancel, time.Now(), assert.AnError)
	m.RecordConsistencyFault(ctx, "ORDER_COMPANY_MISMATCH")

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, metrics["ledger_operation_failures_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["ledger_consistency_faults_total"]))

	durations, ok := metrics["ledger_operation_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	outcomes := map[string]uint64{}
	for _, dp := range durations.DataPoints {
		outcome, _ := dp.Attributes.Value(telemetry.AttrOutcome)
		outcomes[outcome.AsString()] += dp.Count
	}
	assert.Equal(t, map[string]uint64{"success": 1, "failure": 1}, outcomes)
}

func TestLedgerMetrics_NilIsNoop(t *testing.T) {
	var m *telemetry.LedgerMetrics
	assert.NotPanics(t, func() {
		m.RecordAllocation(context.Background(), uuid.New(), "CASH", "paid", decimal.NewFromInt(1))
		m.RecordCancellation(context.Background(), uuid.New(), "CASH")
		m.RecordHardDelete(context.Background(), uuid.New())
		m.RecordOperation(context.Background(), telemetry.OperationAllocate, time.Now(), nil)
		m.RecordConsistencyFault(context.Background(), "LEDGER_INCONSISTENT")
	})
}
