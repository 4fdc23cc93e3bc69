package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/laundrydesk/backend/internal/domain/shared"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/laundrydesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers domain events synchronously to in-process
// handlers. Ledger services publish only after their transaction commits,
// so a failing handler never undoes ledger state; failures are logged.
type InMemoryEventBus struct {
	registry *handlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
	failures atomic.Int64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: newHandlerRegistry(),
		logger:   log,
	}
}

// Publish dispatches every event to its handlers in registration order.
// It always returns nil: handler errors and panics are logged and counted.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, handler := range b.registry.handlersFor(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.failures.Add(1)
				logger.Enrich(ctx, b.logger).Error("Event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.String("handler", fmt.Sprintf("%T", handler)),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers handler for the event types it declares
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler) {
	eventTypes := handler.EventTypes()
	if len(eventTypes) == 0 {
		b.logger.Warn("Event handler declares no event types", zap.String("handler", fmt.Sprintf("%T", handler)))
		return
	}
	b.registry.register(handler, eventTypes)
	b.logger.Debug("Event handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Start marks the bus running
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.running.Store(true)
	b.logger.Info("Event bus started", zap.Int("handlers", b.registry.size()))
	return nil
}

// Stop marks the bus stopped. Delivery is synchronous, so nothing is in flight
// once the publishing requests have returned.
func (b *InMemoryEventBus) Stop(_ context.Context) error {
	b.running.Store(false)
	b.logger.Info("Event bus stopped", zap.Int64("handler_failures", b.failures.Load()))
	return nil
}

// IsRunning reports whether Start has been called without a later Stop
func (b *InMemoryEventBus) IsRunning() bool {
	return b.running.Load()
}

// Failures returns how many handler invocations failed or panicked
func (b *InMemoryEventBus) Failures() int64 {
	return b.failures.Load()
}

// dispatch runs one handler inside its own span and turns a panic into an error
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "event."+event.EventType(),
		attribute.String("event.id", event.EventID().String()),
		attribute.String("event.handler", fmt.Sprintf("%T", handler)),
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
		if err != nil {
			telemetry.RecordError(span, err)
		}
		span.End()
	}()

	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
