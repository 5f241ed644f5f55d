// Package escrow implements the escrow payment ledger. Funds are held when a
// buyer pays and settled only from an order's terminal transition.
package escrow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/escrow"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/kasamthapa/krisi/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService handles escrow payments
type PaymentService struct {
	paymentRepo    escrow.PaymentRepository
	orders         escrow.OrderLookup
	eventPublisher shared.EventPublisher
	metrics        *telemetry.MarketplaceMetrics
	logger         *zap.Logger
	holdWindow     time.Duration
	maxRetries     int
}

// NewPaymentService creates a new PaymentService.
// A non-positive holdWindow falls back to escrow.DefaultHoldWindow.
func NewPaymentService(
	paymentRepo escrow.PaymentRepository,
	orders escrow.OrderLookup,
	holdWindow time.Duration,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if holdWindow <= 0 {
		holdWindow = escrow.DefaultHoldWindow
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		orders:      orders,
		logger:      logger.Named("escrow"),
		holdWindow:  holdWindow,
		maxRetries:  shared.DefaultMaxConflictRetries,
	}
}

// SetEventPublisher sets the event publisher for cross-context communication
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *PaymentService) SetMetrics(metrics *telemetry.MarketplaceMetrics) {
	s.metrics = metrics
}

// SetMaxConflictRetries bounds the optimistic-lock retry loop
func (s *PaymentService) SetMaxConflictRetries(n int) {
	if n > 0 {
		s.maxRetries = n
	}
}

// Create places the buyer's payment for an order in escrow.
// If the order reached a terminal status while the payment was being
// written, the matching settlement is applied before returning.
func (s *PaymentService) Create(ctx context.Context, actor shared.Actor, req CreatePaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "create",
		telemetry.SpanAttrOrderID, req.OrderID,
		telemetry.SpanAttrActorID, actor.ID,
	)
	defer span.End()

	if err := actor.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	method, err := escrow.ParsePaymentMethod(req.Method)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if order.BuyerID != actor.ID {
		err := shared.NewUnauthorizedError("Only the buyer can pay for this order")
		telemetry.RecordError(span, err)
		return nil, err
	}

	payment, err := escrow.NewPayment(order, req.Amount, method, s.holdWindow)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	hold := escrow.NewLedgerEntry(payment, escrow.EntryKindHold, escrow.EntryCausePaymentCreated)
	if err := s.paymentRepo.Create(ctx, payment, hold); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, payment.ID)

	s.logger.Info("Payment held in escrow",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.Time("release_deadline", payment.EscrowReleaseDeadline),
	)
	s.metrics.RecordPaymentHeld(ctx, string(payment.Method))
	s.publishEvents(ctx, payment)

	if err := s.reconcile(ctx, order.ID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	current, err := s.paymentRepo.FindByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(current)
	return &response, nil
}

// reconcile settles a freshly created payment whose order went terminal
// between the order read and the payment insert.
func (s *PaymentService) reconcile(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to re-read order %s: %w", orderID, err)
	}
	if !order.IsTerminal() {
		return nil
	}

	settlement, err := order.Settlement()
	if err != nil {
		return err
	}
	s.logger.Warn("Order settled while payment was created, reconciling",
		zap.String("order_id", orderID.String()),
		zap.String("settlement", string(settlement.Kind())),
	)
	return s.settle(ctx, settlement)
}

// Release pays the seller for a delivered order. It is idempotent.
func (s *PaymentService) Release(ctx context.Context, settlement trade.Settlement) error {
	if settlement.Kind() != trade.SettlementRelease {
		return shared.NewValidationError("Release requires a settlement from a delivered order")
	}
	return s.settle(ctx, settlement)
}

// Refund returns funds to the buyer of a cancelled order. It is idempotent.
func (s *PaymentService) Refund(ctx context.Context, settlement trade.Settlement) error {
	if settlement.Kind() != trade.SettlementRefund {
		return shared.NewValidationError("Refund requires a settlement from a cancelled order")
	}
	return s.settle(ctx, settlement)
}

func (s *PaymentService) settle(ctx context.Context, settlement trade.Settlement) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "settle",
		telemetry.SpanAttrOrderID, settlement.OrderID(),
		"settlement_kind", string(settlement.Kind()),
	)
	defer span.End()

	if settlement.IsZero() {
		return shared.NewValidationError("Settlement must be derived from an order")
	}

	var payment *escrow.Payment
	var changed bool
	err := shared.RetryOnConflict(ctx, s.maxRetries, func() error {
		var err error
		changed = false
		payment, err = s.paymentRepo.FindActiveByOrder(ctx, settlement.OrderID())
		if shared.IsCode(err, shared.CodeNotFound) {
			payment = nil
			return nil
		}
		if err != nil {
			return err
		}
		changed, err = payment.Settle(settlement)
		if err != nil || !changed {
			return err
		}
		entry := escrow.NewLedgerEntry(payment, escrow.EntryKindFor(payment.Status), settlement.Cause())
		return s.paymentRepo.SaveWithLock(ctx, payment, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if payment == nil {
		s.logger.Debug("No active payment to settle",
			zap.String("order_id", settlement.OrderID().String()),
			zap.String("settlement", string(settlement.Kind())),
		)
		return nil
	}
	if !changed {
		s.logger.Info("Payment already settled",
			zap.String("payment_id", payment.ID.String()),
			zap.String("status", string(payment.Status)),
		)
		return nil
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, payment.ID)
	s.logger.Info("Payment settled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", payment.OrderID.String()),
		zap.String("status", string(payment.Status)),
		zap.String("cause", settlement.Cause()),
	)
	s.metrics.RecordPaymentSettled(ctx, string(settlement.Kind()))
	s.publishEvents(ctx, payment)
	return nil
}

// Query returns payments matching the filter, newest first
func (s *PaymentService) Query(ctx context.Context, filter escrow.PaymentFilter) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// Entries returns the escrow audit chain of a payment
func (s *PaymentService) Entries(ctx context.Context, paymentID uuid.UUID) ([]LedgerEntryResponse, error) {
	if _, err := s.paymentRepo.FindByID(ctx, paymentID); err != nil {
		return nil, err
	}
	entries, err := s.paymentRepo.EntriesByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return ToLedgerEntryResponses(entries), nil
}

func (s *PaymentService) publishEvents(ctx context.Context, payment *escrow.Payment) {
	events := payment.PullEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish payment events",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
	}
}
