package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// OrderFilter narrows order queries. Zero values mean "any".
type OrderFilter struct {
	BuyerID   *uuid.UUID
	SellerID  *uuid.UUID
	ProductID *uuid.UUID
	Status    OrderStatus
	shared.Pagination
}

// Matches reports whether o satisfies the filter
func (f OrderFilter) Matches(o *Order) bool {
	if f.BuyerID != nil && o.BuyerID != *f.BuyerID {
		return false
	}
	if f.SellerID != nil && o.SellerID != *f.SellerID {
		return false
	}
	if f.ProductID != nil && o.ProductID != *f.ProductID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}

// OrderReader is the read-only view of the order store
type OrderReader interface {
	// FindByID returns a NOT_FOUND error when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindAll returns matching orders, newest first
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)
}

// OrderRepository defines the persistence contract for orders
type OrderRepository interface {
	OrderReader

	// Save inserts a new order
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an existing order if its stored version still
	// equals order.Version, then bumps the version.
	// Returns a CONCURRENCY_CONFLICT error when the version is stale.
	SaveWithLock(ctx context.Context, order *Order) error
}
