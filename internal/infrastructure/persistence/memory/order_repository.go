package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
)

// OrderRepository implements trade.OrderRepository in memory
type OrderRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*trade.Order
	seq   []uuid.UUID
}

// NewOrderRepository creates an empty OrderRepository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		items: make(map[uuid.UUID]*trade.Order),
	}
}

func cloneOrder(o *trade.Order) *trade.Order {
	c := *o
	c.DiscardEvents()
	return &c
}

// FindByID finds an order by its ID
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError("Order not found")
	}
	return cloneOrder(o), nil
}

// FindAll returns matching orders, newest first.
// Orders created at the same instant are returned latest-inserted first.
func (r *OrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	r.mu.RLock()
	result := make([]trade.Order, 0)
	for i := len(r.seq) - 1; i >= 0; i-- {
		o := r.items[r.seq[i]]
		if filter.Matches(o) {
			result = append(result, *cloneOrder(o))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return shared.Paginate(result, filter.Pagination), nil
}

// Save inserts a new order
func (r *OrderRepository) Save(ctx context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Order already exists")
	}
	r.items[order.ID] = cloneOrder(order)
	r.seq = append(r.seq, order.ID)
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *OrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return shared.NewNotFoundError("Order not found")
	}
	if current.Version != order.Version {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "The order has been modified by another user")
	}

	order.IncrementVersion()
	r.items[order.ID] = cloneOrder(order)
	return nil
}

// Ensure OrderRepository implements trade.OrderRepository
var _ trade.OrderRepository = (*OrderRepository)(nil)
