package escrow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind is the kind of escrow movement an entry records
type EntryKind string

const (
	EntryKindHold    EntryKind = "HOLD"
	EntryKindRelease EntryKind = "RELEASE"
	EntryKindRefund  EntryKind = "REFUND"
)

// EntryCausePaymentCreated marks the HOLD written when a payment is created
const EntryCausePaymentCreated = "PAYMENT_CREATED"

// LedgerEntry is an append-only audit record of one escrow mutation
type LedgerEntry struct {
	ID        uuid.UUID
	PaymentID uuid.UUID
	OrderID   uuid.UUID
	Kind      EntryKind
	Amount    decimal.Decimal
	Cause     string
	CreatedAt time.Time
}

// NewLedgerEntry records the payment's current escrow state
func NewLedgerEntry(p *Payment, kind EntryKind, cause string) LedgerEntry {
	return LedgerEntry{
		ID:        uuid.New(),
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Kind:      kind,
		Amount:    p.Amount,
		Cause:     cause,
		CreatedAt: time.Now(),
	}
}

// EntryKindFor maps a settled payment status to the entry that records it
func EntryKindFor(status PaymentStatus) EntryKind {
	switch status {
	case PaymentStatusReleased:
		return EntryKindRelease
	case PaymentStatusRefunded:
		return EntryKindRefund
	}
	return EntryKindHold
}
