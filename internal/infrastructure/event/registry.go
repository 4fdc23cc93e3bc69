package event

import (
	"slices"
	"sync"

	"github.com/laundrydesk/backend/internal/domain/shared"
)

// handlerRegistry maps ledger event types to handlers in subscription order.
// A handler is listed at most once per type.
type handlerRegistry struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	handlers []shared.EventHandler
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{byType: make(map[string][]shared.EventHandler)}
}

func (r *handlerRegistry) register(handler shared.EventHandler, eventTypes []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.handlers, handler) {
		r.handlers = append(r.handlers, handler)
	}
	for _, eventType := range eventTypes {
		if !slices.Contains(r.byType[eventType], handler) {
			r.byType[eventType] = append(r.byType[eventType], handler)
		}
	}
}

// handlersFor returns a snapshot, so subscriptions made while an event is
// being delivered do not affect that delivery
func (r *handlerRegistry) handlersFor(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.byType[eventType])
}

func (r *handlerRegistry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
