package trade

import (
	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced    = "OrderPlaced"
	EventTypeOrderConfirmed = "OrderConfirmed"
	EventTypeOrderShipped   = "OrderShipped"
	EventTypeOrderDelivered = "OrderDelivered"
	EventTypeOrderCancelled = "OrderCancelled"
)

// OrderPlacedEvent is raised when a buyer places an order
type OrderPlacedEvent struct {
	shared.EventHeader
	OrderID        uuid.UUID       `json:"order_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	BuyerID        uuid.UUID       `json:"buyer_id"`
	SellerID       uuid.UUID       `json:"seller_id"`
	Quantity       int             `json:"quantity"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	UrgentDelivery bool            `json:"urgent_delivery"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		EventHeader:    shared.NewEventHeader(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:        o.ID,
		ProductID:      o.ProductID,
		ProductName:    o.ProductName,
		BuyerID:        o.BuyerID,
		SellerID:       o.SellerID,
		Quantity:       o.Quantity,
		TotalPrice:     o.TotalPrice,
		UrgentDelivery: o.UrgentDelivery,
	}
}

// EventType returns the event type name
func (e *OrderPlacedEvent) EventType() string {
	return EventTypeOrderPlaced
}

// OrderConfirmedEvent is raised when the seller confirms an order
type OrderConfirmedEvent struct {
	shared.EventHeader
	OrderID  uuid.UUID `json:"order_id"`
	BuyerID  uuid.UUID `json:"buyer_id"`
	SellerID uuid.UUID `json:"seller_id"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(o *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		EventHeader: shared.NewEventHeader(EventTypeOrderConfirmed, AggregateTypeOrder, o.ID),
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
	}
}

// EventType returns the event type name
func (e *OrderConfirmedEvent) EventType() string {
	return EventTypeOrderConfirmed
}

// OrderShippedEvent is raised when the seller ships an order
type OrderShippedEvent struct {
	shared.EventHeader
	OrderID         uuid.UUID `json:"order_id"`
	BuyerID         uuid.UUID `json:"buyer_id"`
	SellerID        uuid.UUID `json:"seller_id"`
	DeliveryAddress string    `json:"delivery_address"`
}

// NewOrderShippedEvent creates a new OrderShippedEvent
func NewOrderShippedEvent(o *Order) *OrderShippedEvent {
	return &OrderShippedEvent{
		EventHeader:     shared.NewEventHeader(EventTypeOrderShipped, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		DeliveryAddress: o.DeliveryAddress,
	}
}

// EventType returns the event type name
func (e *OrderShippedEvent) EventType() string {
	return EventTypeOrderShipped
}

// OrderDeliveredEvent is raised when delivery is confirmed.
// Escrow is released and both parties are notified.
type OrderDeliveredEvent struct {
	shared.EventHeader
	OrderID     uuid.UUID       `json:"order_id"`
	ProductName string          `json:"product_name"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// NewOrderDeliveredEvent creates a new OrderDeliveredEvent
func NewOrderDeliveredEvent(o *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		EventHeader: shared.NewEventHeader(EventTypeOrderDelivered, AggregateTypeOrder, o.ID),
		OrderID:     o.ID,
		ProductName: o.ProductName,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		TotalPrice:  o.TotalPrice,
	}
}

// EventType returns the event type name
func (e *OrderDeliveredEvent) EventType() string {
	return EventTypeOrderDelivered
}

// OrderCancelledEvent is raised when either party cancels an order
type OrderCancelledEvent struct {
	shared.EventHeader
	OrderID     uuid.UUID   `json:"order_id"`
	ProductID   uuid.UUID   `json:"product_id"`
	ProductName string      `json:"product_name"`
	BuyerID     uuid.UUID   `json:"buyer_id"`
	SellerID    uuid.UUID   `json:"seller_id"`
	CancelledBy uuid.UUID   `json:"cancelled_by"`
	Quantity    int         `json:"quantity"`
	FromStatus  OrderStatus `json:"from_status"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, from OrderStatus) *OrderCancelledEvent {
	e := &OrderCancelledEvent{
		EventHeader: shared.NewEventHeader(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:     o.ID,
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		Quantity:    o.Quantity,
		FromStatus:  from,
	}
	if o.CancelledBy != nil {
		e.CancelledBy = *o.CancelledBy
	}
	return e
}

// EventType returns the event type name
func (e *OrderCancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}
