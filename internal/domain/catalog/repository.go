package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// ProductFilter narrows product queries. Zero values mean "any".
type ProductFilter struct {
	OwnerID    *uuid.UUID
	Status     ProductStatus
	Category   ProductCategory
	UrgentOnly bool
	shared.Pagination
}

// Matches reports whether p satisfies the filter
func (f ProductFilter) Matches(p *Product) bool {
	if f.OwnerID != nil && p.OwnerID != *f.OwnerID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.UrgentOnly && !p.IsUrgent {
		return false
	}
	return true
}

// ProductReader is the read-only view of the product store
type ProductReader interface {
	// FindByID returns shared.ErrNotFound-coded errors when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindAll returns matching products in creation order
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
}

// ProductRepository defines the persistence contract for products
type ProductRepository interface {
	ProductReader

	// Save inserts a new product
	Save(ctx context.Context, product *Product) error

	// SaveWithLock updates an existing product if its stored version still
	// equals product.Version, then bumps the version.
	// Returns a CONCURRENCY_CONFLICT error when the version is stale.
	SaveWithLock(ctx context.Context, product *Product) error

	// Delete removes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// ReserveStock atomically checks and decrements the available quantity
	ReserveStock(ctx context.Context, id uuid.UUID, qty int) (*Product, error)

	// RestoreStock atomically adds qty back to the available quantity
	RestoreStock(ctx context.Context, id uuid.UUID, qty int) (*Product, error)
}
