package escrow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/shared/valueobject"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// DefaultHoldWindow is how long funds are expected to sit in escrow
const DefaultHoldWindow = 48 * time.Hour

// PaymentMethod is how the buyer funds escrow
type PaymentMethod string

const (
	PaymentMethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodDigitalWallet PaymentMethod = "DIGITAL_WALLET"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodDigitalWallet:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ParsePaymentMethod parses a method name case-insensitively
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("Unknown payment method: %s", s))
	}
	return m, nil
}

// PaymentStatus represents the escrow state of a payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusHeld     PaymentStatus = "HELD"
	PaymentStatusReleased PaymentStatus = "RELEASED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusHeld, PaymentStatusReleased, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusHeld
	case PaymentStatusHeld:
		return target == PaymentStatusReleased || target == PaymentStatusRefunded
	case PaymentStatusReleased, PaymentStatusRefunded:
		return false // Terminal states
	}
	return false
}

// IsTerminal reports whether the payment has been settled
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusReleased || s == PaymentStatusRefunded
}

// Payment is the aggregate root for funds held against one order
type Payment struct {
	shared.BaseAggregateRoot
	OrderID               uuid.UUID
	BuyerID               uuid.UUID
	SellerID              uuid.UUID
	Amount                decimal.Decimal
	Method                PaymentMethod
	Status                PaymentStatus
	EscrowReleaseDeadline time.Time
	SettledBy             string
	SettledAt             *time.Time
}

// NewPayment creates a payment for order and places the funds in escrow.
// The amount must equal the order total exactly.
func NewPayment(order *trade.Order, amount decimal.Decimal, method PaymentMethod, holdWindow time.Duration) (*Payment, error) {
	if order == nil {
		return nil, shared.NewValidationError("Order is required")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown payment method: %s", method))
	}
	if order.IsTerminal() {
		return nil, shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot pay for order in %s status", order.Status))
	}
	if !valueobject.Price(amount).Matches(order.GetTotalPriceMoney()) {
		return nil, shared.NewDomainError(shared.CodeAmountMismatch,
			fmt.Sprintf("Payment amount %s does not match order total %s",
				amount.StringFixed(2), order.TotalPrice.StringFixed(2)))
	}
	if holdWindow <= 0 {
		holdWindow = DefaultHoldWindow
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           order.ID,
		BuyerID:           order.BuyerID,
		SellerID:          order.SellerID,
		Amount:            amount,
		Method:            method,
		Status:            PaymentStatusPending,
	}
	p.EscrowReleaseDeadline = p.CreatedAt.Add(holdWindow)

	// No separate clearing step: escrow is established on creation.
	p.Status = PaymentStatusHeld
	p.Record(NewPaymentHeldEvent(p))

	return p, nil
}

// Settle applies a settlement derived from the paid order.
// Settling into the state the payment is already in is a no-op and reports changed=false.
func (p *Payment) Settle(s trade.Settlement) (changed bool, err error) {
	if s.IsZero() {
		return false, shared.NewValidationError("Settlement must be derived from an order")
	}
	if s.OrderID() != p.OrderID {
		return false, shared.NewValidationError("Settlement belongs to a different order")
	}

	target := PaymentStatusReleased
	if s.Kind() == trade.SettlementRefund {
		target = PaymentStatusRefunded
	}
	if p.Status == target {
		return false, nil
	}
	if !p.Status.CanTransitionTo(target) {
		return false, shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot move payment from %s to %s", p.Status, target))
	}

	now := time.Now()
	p.Status = target
	p.SettledBy = s.Cause()
	p.SettledAt = &now
	p.Touch(now)

	if target == PaymentStatusReleased {
		p.Record(NewPaymentReleasedEvent(p))
	} else {
		p.Record(NewPaymentRefundedEvent(p))
	}

	return true, nil
}

// IsActive reports whether the payment still counts as the order's payment
func (p *Payment) IsActive() bool {
	return p.Status != PaymentStatusRefunded
}

// InvolvesParty reports whether actorID is the buyer or the seller
func (p *Payment) InvolvesParty(actorID uuid.UUID) bool {
	return p.BuyerID == actorID || p.SellerID == actorID
}
