package escrow

import (
	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentHeld     = "PaymentHeld"
	EventTypePaymentReleased = "PaymentReleased"
	EventTypePaymentRefunded = "PaymentRefunded"
)

// PaymentEvent carries the escrow state change of a payment
type PaymentEvent struct {
	shared.EventHeader
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	BuyerID   uuid.UUID       `json:"buyer_id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    PaymentStatus   `json:"status"`
	Cause     string          `json:"cause,omitempty"`
}

func newPaymentEvent(eventType string, p *Payment) *PaymentEvent {
	return &PaymentEvent{
		EventHeader: shared.NewEventHeader(eventType, AggregateTypePayment, p.ID),
		PaymentID:   p.ID,
		OrderID:     p.OrderID,
		BuyerID:     p.BuyerID,
		SellerID:    p.SellerID,
		Amount:      p.Amount,
		Status:      p.Status,
		Cause:       p.SettledBy,
	}
}

// NewPaymentHeldEvent is raised when funds enter escrow
func NewPaymentHeldEvent(p *Payment) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentHeld, p)
}

// NewPaymentReleasedEvent is raised when escrow is released to the seller
func NewPaymentReleasedEvent(p *Payment) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentReleased, p)
}

// NewPaymentRefundedEvent is raised when escrow is returned to the buyer
func NewPaymentRefundedEvent(p *Payment) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentRefunded, p)
}
