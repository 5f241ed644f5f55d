package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and audit timestamps.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch moves UpdatedAt forward to at.
func (e *BaseEntity) Touch(at time.Time) {
	e.UpdatedAt = at
}

// BaseAggregateRoot is embedded by products, orders and payments. Version
// backs the optimistic check in every repository Save; events recorded
// during a command are pulled by the application service once the
// aggregate has been persisted.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now()
	return BaseAggregateRoot{
		BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Version:    1,
	}
}

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// Record queues event for publication.
func (a *BaseAggregateRoot) Record(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// PendingEvents returns queued events without consuming them.
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.pending
}

// DiscardEvents drops queued events, e.g. after a repository rehydrates or
// a test has inspected them.
func (a *BaseAggregateRoot) DiscardEvents() {
	a.pending = nil
}

// PullEvents hands over queued events and empties the queue.
func (a *BaseAggregateRoot) PullEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
