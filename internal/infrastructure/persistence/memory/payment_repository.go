package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/escrow"
	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// PaymentRepository implements escrow.PaymentRepository in memory
type PaymentRepository struct {
	mu      sync.RWMutex
	items   map[uuid.UUID]*escrow.Payment
	seq     []uuid.UUID
	entries map[uuid.UUID][]escrow.LedgerEntry
}

// NewPaymentRepository creates an empty PaymentRepository
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		items:   make(map[uuid.UUID]*escrow.Payment),
		entries: make(map[uuid.UUID][]escrow.LedgerEntry),
	}
}

func clonePayment(p *escrow.Payment) *escrow.Payment {
	c := *p
	c.DiscardEvents()
	return &c
}

// FindByID finds a payment by its ID
func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*escrow.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError("Payment not found")
	}
	return clonePayment(p), nil
}

// FindAll returns matching payments, newest first
func (r *PaymentRepository) FindAll(ctx context.Context, filter escrow.PaymentFilter) ([]escrow.Payment, error) {
	r.mu.RLock()
	result := make([]escrow.Payment, 0)
	for i := len(r.seq) - 1; i >= 0; i-- {
		p := r.items[r.seq[i]]
		if filter.Matches(p) {
			result = append(result, *clonePayment(p))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return shared.Paginate(result, filter.Pagination), nil
}

// FindActiveByOrder returns the order's non-refunded payment
func (r *PaymentRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*escrow.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p := r.activeForOrder(orderID); p != nil {
		return clonePayment(p), nil
	}
	return nil, shared.NewNotFoundError("No active payment for order")
}

func (r *PaymentRepository) activeForOrder(orderID uuid.UUID) *escrow.Payment {
	for _, id := range r.seq {
		p := r.items[id]
		if p.OrderID == orderID && p.IsActive() {
			return p
		}
	}
	return nil
}

// Create inserts the payment and its HOLD entry, enforcing one active payment per order
func (r *PaymentRepository) Create(ctx context.Context, payment *escrow.Payment, hold escrow.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeForOrder(payment.OrderID) != nil {
		return shared.NewInvalidTransitionError("Order already has an active payment")
	}
	r.items[payment.ID] = clonePayment(payment)
	r.seq = append(r.seq, payment.ID)
	r.entries[payment.ID] = append(r.entries[payment.ID], hold)
	return nil
}

// SaveWithLock saves with optimistic locking and appends the ledger entry
func (r *PaymentRepository) SaveWithLock(ctx context.Context, payment *escrow.Payment, entry escrow.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[payment.ID]
	if !ok {
		return shared.NewNotFoundError("Payment not found")
	}
	if current.Version != payment.Version {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "The payment has been modified by another process")
	}

	payment.IncrementVersion()
	r.items[payment.ID] = clonePayment(payment)
	r.entries[payment.ID] = append(r.entries[payment.ID], entry)
	return nil
}

// EntriesByPayment returns the payment's ledger entries in write order
func (r *PaymentRepository) EntriesByPayment(ctx context.Context, paymentID uuid.UUID) ([]escrow.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[paymentID]
	out := make([]escrow.LedgerEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// Ensure PaymentRepository implements escrow.PaymentRepository
var _ escrow.PaymentRepository = (*PaymentRepository)(nil)
