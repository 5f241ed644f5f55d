package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/kasamthapa/krisi/internal/infrastructure/persistence/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProductReader is a mock implementation of catalog.ProductReader
type MockProductReader struct {
	mock.Mock
}

func (m *MockProductReader) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductReader) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	products *memory.ProductRepository
	orders   *memory.OrderRepository
	service  *Service
}

func newFixture() *fixture {
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository()
	return &fixture{
		products: products,
		orders:   orders,
		service:  NewService(products, orders, zap.NewNop()),
	}
}

func (f *fixture) addProduct(t *testing.T, category catalog.ProductCategory, status catalog.ProductStatus, urgent bool, createdAt time.Time) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           uuid.New(),
		Name:              "Produce",
		PricePerUnit:      decimal.RequireFromString("2.50"),
		Quantity:          100,
		Unit:              catalog.ProductUnitWeight,
		Category:          category,
		Status:            status,
		IsUrgent:          urgent,
	}
	p.CreatedAt = createdAt
	require.NoError(t, f.products.Save(context.Background(), p))
	return p
}

func (f *fixture) addOrder(t *testing.T, total string, status trade.OrderStatus, createdAt time.Time, deliveredAfter time.Duration) *trade.Order {
	t.Helper()
	o := &trade.Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         uuid.New(),
		BuyerID:           uuid.New(),
		SellerID:          uuid.New(),
		Quantity:          1,
		UnitPrice:         decimal.RequireFromString(total),
		TotalPrice:        decimal.RequireFromString(total),
		Status:            status,
		DeliveryAddress:   "Kathmandu",
	}
	o.CreatedAt = createdAt
	if status == trade.OrderStatusDelivered {
		delivered := createdAt.Add(deliveredAfter)
		o.DeliveredAt = &delivered
	}
	require.NoError(t, f.orders.Save(context.Background(), o))
	return o
}

func TestService_GetAnalytics_Empty(t *testing.T) {
	f := newFixture()

	got, err := f.service.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.TotalProducts)
	assert.Zero(t, got.TotalOrders)
	assert.True(t, got.TotalRevenue.IsZero())
	assert.Zero(t, got.AverageDeliveryDays)
	assert.Empty(t, got.ProductsByCategory)
	assert.Empty(t, got.RecentActivity)
}

func TestService_GetAnalytics_Counts(t *testing.T) {
	f := newFixture()
	f.addProduct(t, catalog.CategoryVegetables, catalog.ProductStatusApproved, true, baseTime)
	f.addProduct(t, catalog.CategoryVegetables, catalog.ProductStatusPending, false, baseTime.Add(time.Minute))
	f.addProduct(t, catalog.CategoryFruits, catalog.ProductStatusRejected, true, baseTime.Add(2*time.Minute))
	f.addProduct(t, catalog.CategoryDairy, catalog.ProductStatusApproved, false, baseTime.Add(3*time.Minute))

	f.addOrder(t, "75.00", trade.OrderStatusDelivered, baseTime, 48*time.Hour)
	f.addOrder(t, "25.00", trade.OrderStatusDelivered, baseTime, 24*time.Hour)
	f.addOrder(t, "500.00", trade.OrderStatusPending, baseTime, 0)
	f.addOrder(t, "300.00", trade.OrderStatusCancelled, baseTime, 0)
	f.addOrder(t, "40.00", trade.OrderStatusShipped, baseTime, 0)

	got, err := f.service.GetAnalytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, got.TotalProducts)
	assert.Equal(t, 2, got.ActiveProducts)
	assert.Equal(t, 2, got.UrgentSales)
	assert.Equal(t, map[string]int{"VEGETABLES": 2, "FRUITS": 1, "DAIRY": 1}, got.ProductsByCategory)

	assert.Equal(t, 5, got.TotalOrders)
	assert.Equal(t, map[string]int{"DELIVERED": 2, "PENDING": 1, "CANCELLED": 1, "SHIPPED": 1}, got.OrdersByStatus)
	assert.True(t, decimal.RequireFromString("100").Equal(got.TotalRevenue), "only delivered orders count, got %s", got.TotalRevenue)
	assert.InDelta(t, 1.5, got.AverageDeliveryDays, 0.0001)
}

func TestService_GetAnalytics_RevenueIsRecomputed(t *testing.T) {
	f := newFixture()
	o := f.addOrder(t, "60.00", trade.OrderStatusShipped, baseTime, 0)

	before, err := f.service.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.True(t, before.TotalRevenue.IsZero())

	stored, err := f.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	stored.Status = trade.OrderStatusDelivered
	now := time.Now()
	stored.DeliveredAt = &now
	require.NoError(t, f.orders.SaveWithLock(context.Background(), stored))

	after, err := f.service.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "60.00", after.TotalRevenue.StringFixed(2))
}

func TestService_GetAnalytics_RecentActivity(t *testing.T) {
	t.Run("newest first and capped", func(t *testing.T) {
		f := newFixture()
		for i := 0; i < 8; i++ {
			f.addProduct(t, catalog.CategoryGrains, catalog.ProductStatusPending, false, baseTime.Add(time.Duration(i)*time.Hour))
		}
		var newest *trade.Order
		for i := 0; i < 5; i++ {
			newest = f.addOrder(t, "10.00", trade.OrderStatusPending, baseTime.Add(time.Duration(i)*time.Hour+30*time.Minute), 0)
		}

		got, err := f.service.GetAnalytics(context.Background())
		require.NoError(t, err)
		require.Len(t, got.RecentActivity, RecentActivityLimit)

		first := got.RecentActivity[0]
		assert.Equal(t, ActivityProduct, first.Type)
		assert.Equal(t, baseTime.Add(7*time.Hour), first.Date)
		assert.Equal(t, newest.ID, got.RecentActivity[3].ID)
		require.NotNil(t, got.RecentActivity[3].Amount)
		assert.Nil(t, first.Amount)

		for i := 1; i < len(got.RecentActivity); i++ {
			assert.False(t, got.RecentActivity[i].Date.After(got.RecentActivity[i-1].Date))
		}
	})

	t.Run("ties keep insertion order, products before orders", func(t *testing.T) {
		f := newFixture()
		p1 := f.addProduct(t, catalog.CategoryOther, catalog.ProductStatusPending, false, baseTime)
		o1 := f.addOrder(t, "5.00", trade.OrderStatusPending, baseTime, 0)
		p2 := f.addProduct(t, catalog.CategoryOther, catalog.ProductStatusPending, false, baseTime)
		o2 := f.addOrder(t, "5.00", trade.OrderStatusPending, baseTime, 0)

		got, err := f.service.GetAnalytics(context.Background())
		require.NoError(t, err)
		require.Len(t, got.RecentActivity, 4)

		ids := []uuid.UUID{
			got.RecentActivity[0].ID,
			got.RecentActivity[1].ID,
			got.RecentActivity[2].ID,
			got.RecentActivity[3].ID,
		}
		assert.Equal(t, []uuid.UUID{p1.ID, p2.ID, o1.ID, o2.ID}, ids)
	})
}

func TestService_GetAnalytics_ReaderError(t *testing.T) {
	products := new(MockProductReader)
	products.On("FindAll", mock.Anything, catalog.ProductFilter{}).Return(nil, errors.New("connection reset"))
	service := NewService(products, memory.NewOrderRepository(), nil)

	_, err := service.GetAnalytics(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestService_GetAnalytics_IsReadOnly(t *testing.T) {
	f := newFixture()
	p := f.addProduct(t, catalog.CategoryFruits, catalog.ProductStatusApproved, false, baseTime)
	o := f.addOrder(t, "12.00", trade.OrderStatusConfirmed, baseTime, 0)

	_, err := f.service.GetAnalytics(context.Background())
	require.NoError(t, err)

	storedProduct, err := f.products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedProduct.Version)
	assert.Equal(t, 100, storedProduct.Quantity)

	storedOrder, err := f.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedOrder.Version)
	assert.Equal(t, trade.OrderStatusConfirmed, storedOrder.Status)
}
