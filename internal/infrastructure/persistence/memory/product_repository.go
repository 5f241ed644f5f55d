package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// ProductRepository implements catalog.ProductRepository in memory
type ProductRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*catalog.Product
	seq   []uuid.UUID // creation order
}

// NewProductRepository creates an empty ProductRepository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		items: make(map[uuid.UUID]*catalog.Product),
	}
}

func cloneProduct(p *catalog.Product) *catalog.Product {
	c := *p
	c.DiscardEvents()
	return &c
}

// FindByID finds a product by its ID
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError("Product not found")
	}
	return cloneProduct(p), nil
}

// FindAll returns matching products in creation order
func (r *ProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]catalog.Product, 0)
	for _, id := range r.seq {
		p := r.items[id]
		if filter.Matches(p) {
			result = append(result, *cloneProduct(p))
		}
	}
	return shared.Paginate(result, filter.Pagination), nil
}

// Save inserts a new product
func (r *ProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Product already exists")
	}
	r.items[product.ID] = cloneProduct(product)
	r.seq = append(r.seq, product.ID)
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *ProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[product.ID]
	if !ok {
		return shared.NewNotFoundError("Product not found")
	}
	if current.Version != product.Version {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "The product has been modified by another user")
	}

	product.IncrementVersion()
	r.items[product.ID] = cloneProduct(product)
	return nil
}

// Delete removes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return shared.NewNotFoundError("Product not found")
	}
	delete(r.items, id)
	for i, sid := range r.seq {
		if sid == id {
			r.seq = append(r.seq[:i], r.seq[i+1:]...)
			break
		}
	}
	return nil
}

// ReserveStock checks and decrements the quantity under the write lock
func (r *ProductRepository) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (*catalog.Product, error) {
	return r.mutateStock(id, func(p *catalog.Product) error { return p.Reserve(qty) })
}

// RestoreStock adds qty back under the write lock
func (r *ProductRepository) RestoreStock(ctx context.Context, id uuid.UUID, qty int) (*catalog.Product, error) {
	return r.mutateStock(id, func(p *catalog.Product) error { return p.Restore(qty) })
}

func (r *ProductRepository) mutateStock(id uuid.UUID, fn func(p *catalog.Product) error) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError("Product not found")
	}
	next := cloneProduct(current)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.IncrementVersion()
	r.items[id] = next
	return cloneProduct(next), nil
}

// Ensure ProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*ProductRepository)(nil)
