package telemetry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
}

// FaultReporter forwards faults that indicate corrupt ledger state to Sentry.
// With an empty DSN it only logs.
type FaultReporter struct {
	enabled bool
	logger  *zap.Logger
	metrics *LedgerMetrics
}

// NewFaultReporter initializes the Sentry client when a DSN is configured.
func NewFaultReporter(cfg SentryConfig, logger *zap.Logger, metrics *LedgerMetrics) (*FaultReporter, error) {
	r := &FaultReporter{logger: logger, metrics: metrics}
	if cfg.DSN == "" {
		return r, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		TracesSampleRate: cfg.TracesSampleRate,
	}); err != nil {
		return nil, err
	}
	r.enabled = true
	logger.Info("Sentry initialized", zap.String("environment", cfg.Environment))
	return r, nil
}

// Enabled reports whether events are sent to Sentry
func (r *FaultReporter) Enabled() bool {
	return r != nil && r.enabled
}

// Report records a consistency fault. code is the fault's error code.
func (r *FaultReporter) Report(ctx context.Context, code string, err error, tags map[string]string) {
	if r == nil || err == nil {
		return
	}

	fields := []zap.Field{zap.String("code", code), zap.Error(err)}
	for k, v := range tags {
		fields = append(fields, zap.String(k, v))
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	r.logger.Error("Ledger consistency fault", fields...)
	r.metrics.RecordConsistencyFault(ctx, code)

	if !r.enabled {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("code", code)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

// Flush waits for buffered events to be delivered
func (r *FaultReporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return sentry.Flush(timeout)
}
