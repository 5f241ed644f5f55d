package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a marketplace fact raised by an aggregate, e.g.
// OrderPlaced or PaymentReleased.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// EventHeader is embedded by concrete events. Its fields are serialized
// alongside the event body when events leave the process.
type EventHeader struct {
	ID        uuid.UUID `json:"event_id"`
	Type      string    `json:"event_type"`
	At        time.Time `json:"occurred_at"`
	Aggregate uuid.UUID `json:"aggregate_id"`
	Kind      string    `json:"aggregate_type"`
}

func (h *EventHeader) EventID() uuid.UUID     { return h.ID }
func (h *EventHeader) EventType() string      { return h.Type }
func (h *EventHeader) OccurredAt() time.Time  { return h.At }
func (h *EventHeader) AggregateID() uuid.UUID { return h.Aggregate }
func (h *EventHeader) AggregateType() string  { return h.Kind }

// NewEventHeader stamps a new event of eventType for the aggregate
// identified by kind and id. Timestamps are UTC.
func NewEventHeader(eventType, kind string, id uuid.UUID) EventHeader {
	return EventHeader{
		ID:        uuid.New(),
		Type:      eventType,
		At:        time.Now().UTC(),
		Aggregate: id,
		Kind:      kind,
	}
}
