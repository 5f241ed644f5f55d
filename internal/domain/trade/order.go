package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// AllOrderStatuses lists every status in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if target is the single legal next step from s
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// isForward reports whether the status is a fulfilment step driven by the seller
func (s OrderStatus) isForward() bool {
	return s == OrderStatusConfirmed || s == OrderStatusShipped || s == OrderStatusDelivered
}

// ParseOrderStatus parses a status name case-insensitively
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("Unknown order status: %s", s))
	}
	return status, nil
}

// ProductSnapshot is the view of a product captured when an order is placed
type ProductSnapshot struct {
	ProductID    uuid.UUID
	OwnerID      uuid.UUID
	Name         string
	PricePerUnit decimal.Decimal
}

// Order is the aggregate root for a buyer's purchase of one product.
// ProductID, BuyerID, SellerID and UnitPrice never change after creation.
type Order struct {
	shared.BaseAggregateRoot
	ProductID       uuid.UUID
	ProductName     string
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	Status          OrderStatus
	DeliveryAddress string
	UrgentDelivery  bool
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CancelledBy     *uuid.UUID
	StockRestoredAt *time.Time
}

// NewOrder creates a PENDING order for qty units of the snapshotted product.
// The seller and unit price are copied from the snapshot.
func NewOrder(buyerID uuid.UUID, product ProductSnapshot, qty int, deliveryAddress string, urgent bool) (*Order, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewValidationError("Buyer ID cannot be empty")
	}
	if product.ProductID == uuid.Nil || product.OwnerID == uuid.Nil {
		return nil, shared.NewValidationError("Product reference is incomplete")
	}
	if qty < 1 {
		return nil, shared.NewValidationError("Quantity must be at least 1")
	}
	if !product.PricePerUnit.IsPositive() {
		return nil, shared.NewValidationError("Unit price must be positive")
	}
	address := strings.TrimSpace(deliveryAddress)
	if address == "" {
		return nil, shared.NewValidationError("Delivery address is required")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         product.ProductID,
		ProductName:       product.Name,
		BuyerID:           buyerID,
		SellerID:          product.OwnerID,
		Quantity:          qty,
		UnitPrice:         product.PricePerUnit,
		TotalPrice:        valueobject.Price(product.PricePerUnit).Times(qty).Amount(),
		Status:            OrderStatusPending,
		DeliveryAddress:   address,
		UrgentDelivery:    urgent,
	}

	o.Record(NewOrderPlacedEvent(o))

	return o, nil
}

// IsParty reports whether the actor is the buyer or the seller
func (o *Order) IsParty(actorID uuid.UUID) bool {
	return actorID == o.BuyerID || actorID == o.SellerID
}

// Counterpart returns the other party of the order
func (o *Order) Counterpart(actorID uuid.UUID) uuid.UUID {
	if actorID == o.BuyerID {
		return o.SellerID
	}
	return o.BuyerID
}

// authorize checks that the actor may move the order to target
func (o *Order) authorize(actor shared.Actor, target OrderStatus) error {
	if target.isForward() {
		if actor.ID != o.SellerID {
			return shared.NewUnauthorizedError(fmt.Sprintf("Only the seller can move an order to %s", target))
		}
		return nil
	}
	if !o.IsParty(actor.ID) {
		return shared.NewUnauthorizedError("Only the buyer or seller can change this order")
	}
	return nil
}

// AdvanceTo moves the order to target on behalf of actor.
// Requesting the status the order already has is a no-op and reports changed=false.
func (o *Order) AdvanceTo(actor shared.Actor, target OrderStatus) (changed bool, err error) {
	if !target.IsValid() {
		return false, shared.NewValidationError(fmt.Sprintf("Unknown order status: %s", target))
	}
	if err := o.authorize(actor, target); err != nil {
		return false, err
	}
	if target == o.Status {
		return false, nil
	}
	if !o.Status.CanTransitionTo(target) {
		return false, shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	o.Touch(now)

	switch target {
	case OrderStatusConfirmed:
		o.ConfirmedAt = &now
		o.Record(NewOrderConfirmedEvent(o))
	case OrderStatusShipped:
		o.ShippedAt = &now
		o.Record(NewOrderShippedEvent(o))
	case OrderStatusDelivered:
		o.DeliveredAt = &now
		o.Record(NewOrderDeliveredEvent(o))
	case OrderStatusCancelled:
		o.CancelledAt = &now
		cancelledBy := actor.ID
		o.CancelledBy = &cancelledBy
		o.Record(NewOrderCancelledEvent(o, from))
	}

	return true, nil
}

// ClaimStockRestore stamps a cancelled order whose units have not gone back
// on the product yet. It reports false when there is nothing to claim.
func (o *Order) ClaimStockRestore(at time.Time) bool {
	if o.Status != OrderStatusCancelled || o.StockRestoredAt != nil {
		return false
	}
	o.StockRestoredAt = &at
	o.Touch(at)
	return true
}

// ReleaseStockRestore clears the stamp after a failed restore so the next
// cancel request issues it again.
func (o *Order) ReleaseStockRestore() {
	o.StockRestoredAt = nil
	o.Touch(time.Now())
}

// IsTerminal reports whether the order is DELIVERED or CANCELLED
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// GetTotalPriceMoney returns the order total as Money
func (o *Order) GetTotalPriceMoney() valueobject.Money {
	return valueobject.Price(o.TotalPrice)
}

// DeliveryDuration returns how long the order took from placement to delivery
func (o *Order) DeliveryDuration() (time.Duration, bool) {
	if o.DeliveredAt == nil {
		return 0, false
	}
	return o.DeliveredAt.Sub(o.CreatedAt), true
}
