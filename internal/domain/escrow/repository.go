package escrow

import (
	"context"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
)

// PaymentFilter narrows payment queries. Zero values mean "any".
type PaymentFilter struct {
	OrderID       *uuid.UUID
	CounterpartID *uuid.UUID // buyer or seller
	Status        PaymentStatus
	shared.Pagination
}

// Matches reports whether p satisfies the filter
func (f PaymentFilter) Matches(p *Payment) bool {
	if f.OrderID != nil && p.OrderID != *f.OrderID {
		return false
	}
	if f.CounterpartID != nil && !p.InvolvesParty(*f.CounterpartID) {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	return true
}

// PaymentRepository defines the persistence contract for payments and their ledger
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindAll returns matching payments, newest first
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// FindActiveByOrder returns the order's non-refunded payment, or a NOT_FOUND error
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)

	// Create inserts the payment together with its HOLD entry.
	// Fails with INVALID_TRANSITION if the order already has an active payment.
	Create(ctx context.Context, payment *Payment, hold LedgerEntry) error

	// SaveWithLock updates the payment with a version check and appends entry atomically
	SaveWithLock(ctx context.Context, payment *Payment, entry LedgerEntry) error

	// EntriesByPayment returns the audit chain in the order it was written
	EntriesByPayment(ctx context.Context, paymentID uuid.UUID) ([]LedgerEntry, error)
}

// OrderLookup is the read access escrow needs to the order store.
// It is satisfied by trade.OrderReader and never by the order service.
type OrderLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error)
}
