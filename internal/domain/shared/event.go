package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact published once the transaction that produced it has
// committed
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	TenantID() uuid.UUID
}

// EventHeader identifies a domain event. Embedding it provides the
// DomainEvent methods.
type EventHeader struct {
	ID        uuid.UUID `json:"event_id"`
	Type      string    `json:"event_type"`
	At        time.Time `json:"occurred_at"`
	Aggregate uuid.UUID `json:"aggregate_id"`
	Tenant    uuid.UUID `json:"tenant_id"`
}

// NewEventHeader stamps a new event of eventType for an aggregate
func NewEventHeader(eventType string, aggregateID, tenantID uuid.UUID) EventHeader {
	return EventHeader{
		ID:        uuid.New(),
		Type:      eventType,
		At:        time.Now(),
		Aggregate: aggregateID,
		Tenant:    tenantID,
	}
}

func (h EventHeader) EventID() uuid.UUID     { return h.ID }
func (h EventHeader) EventType() string      { return h.Type }
func (h EventHeader) OccurredAt() time.Time  { return h.At }
func (h EventHeader) AggregateID() uuid.UUID { return h.Aggregate }
func (h EventHeader) TenantID() uuid.UUID    { return h.Tenant }
