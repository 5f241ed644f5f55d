package catalog

import (
	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductListed   = "ProductListed"
	EventTypeProductApproved = "ProductApproved"
	EventTypeProductRejected = "ProductRejected"
)

// ProductListedEvent is raised when a producer lists a new product
type ProductListedEvent struct {
	shared.EventHeader
	ProductID uuid.UUID       `json:"product_id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Name      string          `json:"name"`
	Category  ProductCategory `json:"category"`
	IsUrgent  bool            `json:"is_urgent"`
}

// NewProductListedEvent creates a new ProductListedEvent
func NewProductListedEvent(p *Product) *ProductListedEvent {
	return &ProductListedEvent{
		EventHeader: shared.NewEventHeader(EventTypeProductListed, AggregateTypeProduct, p.ID),
		ProductID:   p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Category:    p.Category,
		IsUrgent:    p.IsUrgent,
	}
}

// EventType returns the event type name
func (e *ProductListedEvent) EventType() string {
	return EventTypeProductListed
}

// ProductApprovedEvent is raised when a reviewer approves a listing.
// The owner is notified.
type ProductApprovedEvent struct {
	shared.EventHeader
	ProductID  uuid.UUID `json:"product_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
}

// NewProductApprovedEvent creates a new ProductApprovedEvent
func NewProductApprovedEvent(p *Product) *ProductApprovedEvent {
	e := &ProductApprovedEvent{
		EventHeader: shared.NewEventHeader(EventTypeProductApproved, AggregateTypeProduct, p.ID),
		ProductID:   p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
	}
	if p.ReviewedBy != nil {
		e.ReviewerID = *p.ReviewedBy
	}
	return e
}

// EventType returns the event type name
func (e *ProductApprovedEvent) EventType() string {
	return EventTypeProductApproved
}

// ProductRejectedEvent is raised when a reviewer rejects a listing.
// The owner is notified.
type ProductRejectedEvent struct {
	shared.EventHeader
	ProductID  uuid.UUID `json:"product_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Reason     string    `json:"reason,omitempty"`
}

// NewProductRejectedEvent creates a new ProductRejectedEvent
func NewProductRejectedEvent(p *Product) *ProductRejectedEvent {
	e := &ProductRejectedEvent{
		EventHeader: shared.NewEventHeader(EventTypeProductRejected, AggregateTypeProduct, p.ID),
		ProductID:   p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Reason:      p.RejectReason,
	}
	if p.ReviewedBy != nil {
		e.ReviewerID = *p.ReviewedBy
	}
	return e
}

// EventType returns the event type name
func (e *ProductRejectedEvent) EventType() string {
	return EventTypeProductRejected
}
