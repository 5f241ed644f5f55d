package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// SettlementKind is what the escrow ledger must do with held funds
type SettlementKind string

const (
	SettlementRelease SettlementKind = "RELEASE"
	SettlementRefund  SettlementKind = "REFUND"
)

// Settlement causes recorded on escrow ledger entries
const (
	SettlementCauseOrderDelivered = "ORDER_DELIVERED"
	SettlementCauseOrderCancelled = "ORDER_CANCELLED"
)

// Settlement is an instruction to settle escrow for a terminal order.
// Its fields are unexported so the only way to obtain one is Order.Settlement.
type Settlement struct {
	orderID   uuid.UUID
	kind      SettlementKind
	cause     string
	settledAt time.Time
}

// Settlement derives the escrow instruction for a DELIVERED or CANCELLED order
func (o *Order) Settlement() (Settlement, error) {
	switch o.Status {
	case OrderStatusDelivered:
		at := o.UpdatedAt
		if o.DeliveredAt != nil {
			at = *o.DeliveredAt
		}
		return Settlement{orderID: o.ID, kind: SettlementRelease, cause: SettlementCauseOrderDelivered, settledAt: at}, nil
	case OrderStatusCancelled:
		at := o.UpdatedAt
		if o.CancelledAt != nil {
			at = *o.CancelledAt
		}
		return Settlement{orderID: o.ID, kind: SettlementRefund, cause: SettlementCauseOrderCancelled, settledAt: at}, nil
	}
	return Settlement{}, shared.NewInvalidTransitionError(
		fmt.Sprintf("Order in %s status cannot settle escrow", o.Status))
}

// OrderID returns the order being settled
func (s Settlement) OrderID() uuid.UUID {
	return s.orderID
}

// Kind returns whether funds are released or refunded
func (s Settlement) Kind() SettlementKind {
	return s.kind
}

// Cause returns the order transition that caused the settlement
func (s Settlement) Cause() string {
	return s.cause
}

// SettledAt returns when the causing transition happened
func (s Settlement) SettledAt() time.Time {
	return s.settledAt
}

// IsZero reports whether the settlement was not derived from an order
func (s Settlement) IsZero() bool {
	return s.orderID == uuid.Nil
}
