package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStart_AllSignalsDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p, err := Start(context.Background(), Config{ServiceName: "laundry-ledger"}, zap.New(core))
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.False(t, p.MetricsEnabled())
	assert.NotNil(t, p.Meter("ledger"))
	assert.Equal(t, 1, logs.FilterMessage("Telemetry export disabled").Len())

	base := zap.NewNop()
	assert.Same(t, base, p.Bridge(base))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1.5).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(&levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}).With(zap.String("tenant_id", "t-1"))

	log.Info("Payment allocated")
	log.Warn("Failed to publish ledger events")
	log.Error("Ledger consistency fault")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Failed to publish ledger events", entries[0].Message)
	assert.Equal(t, "t-1", entries[1].ContextMap()["tenant_id"])
}
