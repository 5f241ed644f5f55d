package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/kasamthapa/krisi/internal/domain/escrow"
	"github.com/kasamthapa/krisi/internal/domain/notification"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApprovedProduct(t *testing.T, qty int) *catalog.Product {
	p, err := catalog.NewProduct(uuid.New(), catalog.ProductDetails{
		Name:         "Potatoes",
		PricePerUnit: decimal.RequireFromString("1.20"),
		Quantity:     qty,
		Unit:         catalog.ProductUnitWeight,
		Category:     catalog.CategoryVegetables,
	})
	require.NoError(t, err)
	require.NoError(t, p.Approve(uuid.New()))
	return p
}

func newOrder(t *testing.T) *trade.Order {
	o, err := trade.NewOrder(uuid.New(), trade.ProductSnapshot{
		ProductID:    uuid.New(),
		OwnerID:      uuid.New(),
		Name:         "Potatoes",
		PricePerUnit: decimal.RequireFromString("1.20"),
	}, 5, "Bhaktapur", false)
	require.NoError(t, err)
	return o
}

// ============================================
// ProductRepository Tests
// ============================================

func TestProductRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()

	first := newApprovedProduct(t, 10)
	second := newApprovedProduct(t, 20)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, found.Name)
	assert.Empty(t, found.PendingEvents())

	found.Name = "mutated"
	again, _ := repo.FindByID(ctx, first.ID)
	assert.Equal(t, "Potatoes", again.Name, "store must not share state with callers")

	all, err := repo.FindAll(ctx, catalog.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))

	assert.Error(t, repo.Save(ctx, first))
}

func TestProductRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newApprovedProduct(t, 10)
	require.NoError(t, repo.Save(ctx, p))

	a, _ := repo.FindByID(ctx, p.ID)
	b, _ := repo.FindByID(ctx, p.ID)

	a.Description = "first writer"
	require.NoError(t, repo.SaveWithLock(ctx, a))
	assert.Equal(t, 2, a.Version)

	b.Description = "second writer"
	err := repo.SaveWithLock(ctx, b)
	assert.True(t, shared.IsCode(err, shared.CodeConcurrencyConflict))

	stored, _ := repo.FindByID(ctx, p.ID)
	assert.Equal(t, "first writer", stored.Description)
}

func TestProductRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newApprovedProduct(t, 10)
	require.NoError(t, repo.Save(ctx, p))

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err := repo.FindByID(ctx, p.ID)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
	all, _ := repo.FindAll(ctx, catalog.ProductFilter{})
	assert.Empty(t, all)
	assert.True(t, shared.IsCode(repo.Delete(ctx, p.ID), shared.CodeNotFound))
}

func TestProductRepository_ReserveStock_NoOversell(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newApprovedProduct(t, 50)
	require.NoError(t, repo.Save(ctx, p))

	var wg sync.WaitGroup
	var reserved atomic.Int64
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ReserveStock(ctx, p.ID, 3); err == nil {
				reserved.Add(3)
			} else {
				assert.True(t, shared.IsCode(err, shared.CodeInsufficientStock))
			}
		}()
	}
	wg.Wait()

	stored, _ := repo.FindByID(ctx, p.ID)
	assert.Equal(t, int64(48), reserved.Load())
	assert.Equal(t, 2, stored.Quantity)
	assert.Equal(t, int64(50), reserved.Load()+int64(stored.Quantity))
}

func TestProductRepository_RestoreStock(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newApprovedProduct(t, 10)
	require.NoError(t, repo.Save(ctx, p))

	_, err := repo.ReserveStock(ctx, p.ID, 4)
	require.NoError(t, err)
	restored, err := repo.RestoreStock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, restored.Quantity)

	_, err = repo.ReserveStock(ctx, uuid.New(), 1)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}

// ============================================
// OrderRepository Tests
// ============================================

func TestOrderRepository_FindAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	older := newOrder(t)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newOrder(t)
	tieA := newOrder(t)
	tieB := newOrder(t)
	tieB.CreatedAt = tieA.CreatedAt
	newer.CreatedAt = tieA.CreatedAt.Add(time.Minute)

	for _, o := range []*trade.Order{older, tieA, newer, tieB} {
		require.NoError(t, repo.Save(ctx, o))
	}

	all, err := repo.FindAll(ctx, trade.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, tieB.ID, all[1].ID, "ties keep latest insertion first")
	assert.Equal(t, tieA.ID, all[2].ID)
	assert.Equal(t, older.ID, all[3].ID)

	page, _ := repo.FindAll(ctx, trade.OrderFilter{Pagination: shared.Pagination{Page: 2, PageSize: 3}})
	require.Len(t, page, 1)
	assert.Equal(t, older.ID, page[0].ID)

	byBuyer, _ := repo.FindAll(ctx, trade.OrderFilter{BuyerID: &older.BuyerID})
	require.Len(t, byBuyer, 1)
}

func TestOrderRepository_ConcurrentAdvanceHasOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := newOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local, err := repo.FindByID(ctx, o.ID)
			if !assert.NoError(t, err) {
				return
			}
			changed, err := local.AdvanceTo(shared.Actor{ID: local.SellerID, Role: shared.RoleFarmer}, trade.OrderStatusConfirmed)
			if !assert.NoError(t, err) || !changed {
				return
			}
			if err := repo.SaveWithLock(ctx, local); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	stored, _ := repo.FindByID(ctx, o.ID)
	assert.Equal(t, trade.OrderStatusConfirmed, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

// ============================================
// PaymentRepository Tests
// ============================================

func TestPaymentRepository_OneActivePerOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()
	o := newOrder(t)

	p1, err := escrow.NewPayment(o, o.TotalPrice, escrow.PaymentMethodCash, 0)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p1, escrow.NewLedgerEntry(p1, escrow.EntryKindHold, escrow.EntryCausePaymentCreated)))

	p2, _ := escrow.NewPayment(o, o.TotalPrice, escrow.PaymentMethodCash, 0)
	err = repo.Create(ctx, p2, escrow.NewLedgerEntry(p2, escrow.EntryKindHold, escrow.EntryCausePaymentCreated))
	assert.True(t, shared.IsCode(err, shared.CodeInvalidTransition))

	active, err := repo.FindActiveByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, active.ID)

	_, err = repo.FindActiveByOrder(ctx, uuid.New())
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}

func TestPaymentRepository_SaveWithLockAppendsEntry(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()
	o := newOrder(t)
	p, _ := escrow.NewPayment(o, o.TotalPrice, escrow.PaymentMethodCash, 0)
	require.NoError(t, repo.Create(ctx, p, escrow.NewLedgerEntry(p, escrow.EntryKindHold, escrow.EntryCausePaymentCreated)))

	_, err := o.AdvanceTo(shared.Actor{ID: o.BuyerID, Role: shared.RoleBusiness}, trade.OrderStatusCancelled)
	require.NoError(t, err)
	s, err := o.Settlement()
	require.NoError(t, err)

	stale, _ := repo.FindByID(ctx, p.ID)
	_, err = p.Settle(s)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, p, escrow.NewLedgerEntry(p, escrow.EntryKindRefund, s.Cause())))

	_, err = stale.Settle(s)
	require.NoError(t, err)
	err = repo.SaveWithLock(ctx, stale, escrow.NewLedgerEntry(stale, escrow.EntryKindRefund, s.Cause()))
	assert.True(t, shared.IsCode(err, shared.CodeConcurrencyConflict))

	entries, err := repo.EntriesByPayment(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, escrow.EntryKindHold, entries[0].Kind)
	assert.Equal(t, escrow.EntryKindRefund, entries[1].Kind)

	_, err = repo.FindActiveByOrder(ctx, o.ID)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound), "refunded payments are no longer active")

	byStatus, _ := repo.FindAll(ctx, escrow.PaymentFilter{Status: escrow.PaymentStatusRefunded})
	assert.Len(t, byStatus, 1)
}

// ============================================
// NotificationRepository Tests
// ============================================

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()
	recipient := uuid.New()

	first, _ := notification.NewNotification(recipient, notification.ChannelSMS, "one")
	second, _ := notification.NewNotification(recipient, notification.ChannelSMS, "two")
	second.CreatedAt = first.CreatedAt
	other, _ := notification.NewNotification(uuid.New(), notification.ChannelSMS, "other")

	for _, n := range []*notification.Notification{first, second, other} {
		require.NoError(t, repo.Save(ctx, n))
	}

	require.NoError(t, first.MarkSent())
	require.NoError(t, repo.Save(ctx, first))

	list, err := repo.FindByRecipient(ctx, recipient)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, notification.StatusSent, list[1].Status)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}
