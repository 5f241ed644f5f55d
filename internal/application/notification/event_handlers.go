package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/kasamthapa/krisi/internal/domain/notification"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"go.uber.org/zap"
)

// Notifier is the part of the Dispatcher the event handlers use
type Notifier interface {
	Send(ctx context.Context, recipientID uuid.UUID, channel notification.Channel, message string) (*NotificationResponse, error)
}

func unexpectedEvent(logger *zap.Logger, expected string, event shared.DomainEvent) error {
	logger.Error("unexpected event type",
		zap.String("expected", expected),
		zap.String("actual", event.EventType()),
	)
	return fmt.Errorf("unexpected event type: expected %s, got %s", expected, event.EventType())
}

// ProductReviewedHandler tells a farmer their listing was approved or rejected
type ProductReviewedHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewProductReviewedHandler creates a new handler for product review events
func NewProductReviewedHandler(notifier Notifier, logger *zap.Logger) *ProductReviewedHandler {
	return &ProductReviewedHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ProductReviewedHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductApproved, catalog.EventTypeProductRejected}
}

// Handle notifies the product owner of the review outcome
func (h *ProductReviewedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var ownerID uuid.UUID
	var message string

	switch e := event.(type) {
	case *catalog.ProductApprovedEvent:
		ownerID = e.OwnerID
		message = fmt.Sprintf("Your product %q has been approved", e.Name)
	case *catalog.ProductRejectedEvent:
		ownerID = e.OwnerID
		message = fmt.Sprintf("Your product %q has been rejected", e.Name)
		if e.Reason != "" {
			message += ": " + e.Reason
		}
	default:
		return unexpectedEvent(h.logger, "ProductApproved|ProductRejected", event)
	}

	h.logger.Info("notifying product owner of review",
		zap.String("product_id", event.AggregateID().String()),
		zap.String("event_type", event.EventType()),
	)

	if _, err := h.notifier.Send(ctx, ownerID, notification.ChannelSystem, message); err != nil {
		return fmt.Errorf("failed to notify product owner: %w", err)
	}
	return nil
}

// OrderPlacedHandler tells the seller a new order arrived
type OrderPlacedHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewOrderPlacedHandler creates a new handler for order placed events
func NewOrderPlacedHandler(notifier Notifier, logger *zap.Logger) *OrderPlacedHandler {
	return &OrderPlacedHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPlaced}
}

// Handle notifies the seller
func (h *OrderPlacedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*trade.OrderPlacedEvent)
	if !ok {
		return unexpectedEvent(h.logger, trade.EventTypeOrderPlaced, event)
	}

	message := fmt.Sprintf("New order for %d x %q totalling %s", placed.Quantity, placed.ProductName, placed.TotalPrice.StringFixed(2))
	if placed.UrgentDelivery {
		message += " (urgent delivery)"
	}

	if _, err := h.notifier.Send(ctx, placed.SellerID, notification.ChannelSMS, message); err != nil {
		return fmt.Errorf("failed to notify seller: %w", err)
	}
	return nil
}

// OrderDeliveredHandler tells both parties that delivery completed and escrow was released
type OrderDeliveredHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewOrderDeliveredHandler creates a new handler for order delivered events
func NewOrderDeliveredHandler(notifier Notifier, logger *zap.Logger) *OrderDeliveredHandler {
	return &OrderDeliveredHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderDeliveredHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderDelivered}
}

// Handle notifies buyer and seller
func (h *OrderDeliveredHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	delivered, ok := event.(*trade.OrderDeliveredEvent)
	if !ok {
		return unexpectedEvent(h.logger, trade.EventTypeOrderDelivered, event)
	}

	h.logger.Info("notifying parties of delivery",
		zap.String("order_id", delivered.OrderID.String()),
	)

	buyerMsg := fmt.Sprintf("Your order of %q has been delivered", delivered.ProductName)
	if _, err := h.notifier.Send(ctx, delivered.BuyerID, notification.ChannelSMS, buyerMsg); err != nil {
		return fmt.Errorf("failed to notify buyer: %w", err)
	}

	sellerMsg := fmt.Sprintf("Order of %q delivered, payment of %s released from escrow",
		delivered.ProductName, delivered.TotalPrice.StringFixed(2))
	if _, err := h.notifier.Send(ctx, delivered.SellerID, notification.ChannelSMS, sellerMsg); err != nil {
		return fmt.Errorf("failed to notify seller: %w", err)
	}
	return nil
}

// OrderCancelledHandler tells the other party that an order was cancelled
type OrderCancelledHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewOrderCancelledHandler creates a new handler for order cancelled events
func NewOrderCancelledHandler(notifier Notifier, logger *zap.Logger) *OrderCancelledHandler {
	return &OrderCancelledHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderCancelledHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderCancelled}
}

// Handle notifies the counterpart of whoever cancelled
func (h *OrderCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelled, ok := event.(*trade.OrderCancelledEvent)
	if !ok {
		return unexpectedEvent(h.logger, trade.EventTypeOrderCancelled, event)
	}

	recipient := cancelled.BuyerID
	if cancelled.CancelledBy == cancelled.BuyerID {
		recipient = cancelled.SellerID
	}

	message := fmt.Sprintf("Order of %d x %q was cancelled", cancelled.Quantity, cancelled.ProductName)
	if _, err := h.notifier.Send(ctx, recipient, notification.ChannelSMS, message); err != nil {
		return fmt.Errorf("failed to notify counterpart: %w", err)
	}
	return nil
}

// Handlers returns every notification handler bound to notifier
func Handlers(notifier Notifier, logger *zap.Logger) []shared.EventHandler {
	return []shared.EventHandler{
		NewProductReviewedHandler(notifier, logger),
		NewOrderPlacedHandler(notifier, logger),
		NewOrderDeliveredHandler(notifier, logger),
		NewOrderCancelledHandler(notifier, logger),
	}
}
