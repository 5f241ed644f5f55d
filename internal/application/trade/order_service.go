// Package trade implements the order ledger: placing orders against catalog
// stock and driving them through fulfilment, settling escrow on completion.
package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/kasamthapa/krisi/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StockReserver takes and returns product stock for orders
type StockReserver interface {
	Reserve(ctx context.Context, productID uuid.UUID, qty int) (trade.ProductSnapshot, error)
	Restore(ctx context.Context, productID uuid.UUID, qty int) error
}

// EscrowLedger settles held funds once an order reaches a terminal status.
// Both calls must be idempotent.
type EscrowLedger interface {
	Release(ctx context.Context, settlement trade.Settlement) error
	Refund(ctx context.Context, settlement trade.Settlement) error
}

// OrderService handles order placement and fulfilment
type OrderService struct {
	orderRepo      trade.OrderRepository
	stock          StockReserver
	escrow         EscrowLedger
	eventPublisher shared.EventPublisher
	metrics        *telemetry.MarketplaceMetrics
	logger         *zap.Logger
	maxRetries     int
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	stock StockReserver,
	escrow EscrowLedger,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:  orderRepo,
		stock:      stock,
		escrow:     escrow,
		logger:     logger.Named("orders"),
		maxRetries: shared.DefaultMaxConflictRetries,
	}
}

// SetEventPublisher sets the event publisher for cross-context communication
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *OrderService) SetMetrics(metrics *telemetry.MarketplaceMetrics) {
	s.metrics = metrics
}

// SetMaxConflictRetries bounds the optimistic-lock retry loop
func (s *OrderService) SetMaxConflictRetries(n int) {
	if n > 0 {
		s.maxRetries = n
	}
}

// Create reserves stock and places a PENDING order for the buyer
func (s *OrderService) Create(ctx context.Context, actor shared.Actor, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create",
		telemetry.SpanAttrActorID, actor.ID,
		telemetry.SpanAttrProductID, req.ProductID,
		telemetry.SpanAttrQuantity, req.Quantity,
	)
	defer span.End()

	if err := actor.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !actor.Role.CanPlaceOrders() {
		err := shared.NewUnauthorizedError(fmt.Sprintf("Role %s cannot place orders", actor.Role))
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Quantity < 1 {
		return nil, shared.NewValidationError("Quantity must be at least 1")
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, shared.NewValidationError("Delivery address is required")
	}

	snapshot, err := s.stock.Reserve(ctx, req.ProductID, req.Quantity)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	order, err := trade.NewOrder(actor.ID, snapshot, req.Quantity, req.DeliveryAddress, req.UrgentDelivery)
	if err == nil {
		err = s.orderRepo.Save(ctx, order)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		s.restoreStock(ctx, req.ProductID, req.Quantity)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, order.ID)

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("product_id", order.ProductID.String()),
		zap.String("buyer_id", order.BuyerID.String()),
		zap.Int("quantity", order.Quantity),
		zap.String("total", order.TotalPrice.StringFixed(2)),
	)
	s.metrics.RecordOrderPlaced(ctx, order.TotalPrice)
	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// AdvanceStatus moves an order to target on behalf of actor.
//
// The order is committed first with a version check. Follow-up work runs
// afterwards: DELIVERED releases escrow, CANCELLED restores stock and refunds.
// Asking for the status the order already has is a no-op, except that a
// terminal status re-issues the idempotent escrow call and a cancelled order
// whose stock restore failed tries the restore again.
func (s *OrderService) AdvanceStatus(ctx context.Context, actor shared.Actor, orderID uuid.UUID, target trade.OrderStatus) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "advance_status",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrActorID, actor.ID,
		telemetry.SpanAttrStatus, target,
	)
	defer span.End()

	if err := actor.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var order *trade.Order
	var changed, restore bool
	err := shared.RetryOnConflict(ctx, s.maxRetries, func() error {
		var err error
		order, err = s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		changed, err = order.AdvanceTo(actor, target)
		if err != nil {
			return err
		}
		// The claim is committed with the status so concurrent cancels restore once
		restore = order.ClaimStockRestore(time.Now())
		if !changed && !restore {
			return nil
		}
		return s.orderRepo.SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if changed {
		s.logger.Info("Order status changed",
			zap.String("order_id", order.ID.String()),
			zap.String("status", string(order.Status)),
			zap.String("actor_id", actor.ID.String()),
		)
		s.metrics.RecordOrderTransition(ctx, string(order.Status))
		if d, ok := order.DeliveryDuration(); ok {
			s.metrics.RecordDelivery(ctx, d.Hours()/24)
		}
	}

	var followUpErr error
	if restore {
		if err := s.stock.Restore(ctx, order.ProductID, order.Quantity); err != nil {
			s.logger.Error("Failed to restore cancelled stock",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", order.ProductID.String()),
				zap.Int("quantity", order.Quantity),
				zap.Error(err),
			)
			s.releaseStockRestore(ctx, order.ID)
			followUpErr = fmt.Errorf("stock restore failed: %w", err)
		}
	}
	if order.IsTerminal() {
		if err := s.settle(ctx, order); err != nil {
			followUpErr = errors.Join(followUpErr, fmt.Errorf("escrow settlement failed: %w", err))
		}
	}
	if followUpErr != nil {
		telemetry.RecordError(span, followUpErr)
	}

	s.publishEvents(ctx, order)

	if followUpErr != nil {
		return nil, fmt.Errorf("order %s is %s but %w", order.ID, order.Status, followUpErr)
	}

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) settle(ctx context.Context, order *trade.Order) error {
	settlement, err := order.Settlement()
	if err != nil {
		return err
	}

	switch settlement.Kind() {
	case trade.SettlementRelease:
		err = s.escrow.Release(ctx, settlement)
	case trade.SettlementRefund:
		err = s.escrow.Refund(ctx, settlement)
	}
	if err != nil {
		s.logger.Error("Escrow settlement failed",
			zap.String("order_id", order.ID.String()),
			zap.String("settlement", string(settlement.Kind())),
			zap.Error(err),
		)
	}
	return err
}

// releaseStockRestore drops the restore claim so the next cancel request retries it
func (s *OrderService) releaseStockRestore(ctx context.Context, orderID uuid.UUID) {
	err := shared.RetryOnConflict(ctx, s.maxRetries, func() error {
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		order.ReleaseStockRestore()
		return s.orderRepo.SaveWithLock(ctx, order)
	})
	if err != nil {
		s.logger.Error("Failed to release stock restore claim",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
	}
}

// restoreStock hands back units reserved for an order that was never saved
func (s *OrderService) restoreStock(ctx context.Context, productID uuid.UUID, qty int) {
	if err := s.stock.Restore(ctx, productID, qty); err != nil {
		s.logger.Error("Failed to restore reserved stock",
			zap.String("product_id", productID.String()),
			zap.Int("quantity", qty),
			zap.Error(err),
		)
	}
}

// Query returns orders matching the filter, newest first
func (s *OrderService) Query(ctx context.Context, filter trade.OrderFilter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// Get retrieves an order by ID
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) publishEvents(ctx context.Context, order *trade.Order) {
	events := order.PullEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
