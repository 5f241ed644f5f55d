// Package analytics derives the marketplace summary from current catalog and
// order state. Nothing is cached; every call reads the stores afresh.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/kasamthapa/krisi/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const hoursPerDay = 24

// Service computes analytics over read-only product and order views
type Service struct {
	products catalog.ProductReader
	orders   trade.OrderReader
	logger   *zap.Logger
}

// NewService creates a new analytics service
func NewService(products catalog.ProductReader, orders trade.OrderReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products: products,
		orders:   orders,
		logger:   logger.Named("analytics"),
	}
}

// GetAnalytics recomputes the marketplace summary
func (s *Service) GetAnalytics(ctx context.Context) (*AnalyticsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "GetAnalytics")
	defer span.End()

	products, err := s.products.FindAll(ctx, catalog.ProductFilter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	orders, err := s.orders.FindAll(ctx, trade.OrderFilter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	resp := &AnalyticsResponse{
		TotalProducts:      len(products),
		TotalOrders:        len(orders),
		TotalRevenue:       decimal.Zero,
		ProductsByCategory: make(map[string]int),
		OrdersByStatus:     make(map[string]int),
		GeneratedAt:        time.Now(),
	}

	for i := range products {
		p := &products[i]
		if p.Status == catalog.ProductStatusApproved {
			resp.ActiveProducts++
		}
		if p.IsUrgent {
			resp.UrgentSales++
		}
		resp.ProductsByCategory[string(p.Category)]++
	}

	var deliveredCount int
	var totalDeliveryHours float64
	for i := range orders {
		o := &orders[i]
		resp.OrdersByStatus[string(o.Status)]++
		if o.Status != trade.OrderStatusDelivered {
			continue
		}
		resp.TotalRevenue = resp.TotalRevenue.Add(o.TotalPrice)
		if d, ok := o.DeliveryDuration(); ok {
			deliveredCount++
			totalDeliveryHours += d.Hours()
		}
	}
	if deliveredCount > 0 {
		resp.AverageDeliveryDays = totalDeliveryHours / float64(deliveredCount) / hoursPerDay
	}

	resp.RecentActivity = recentActivity(products, orders)

	telemetry.SetAttributes(span,
		"products", resp.TotalProducts,
		"orders", resp.TotalOrders,
	)
	s.logger.Debug("Analytics computed",
		zap.Int("products", resp.TotalProducts),
		zap.Int("orders", resp.TotalOrders),
		zap.String("revenue", resp.TotalRevenue.StringFixed(2)),
	)
	return resp, nil
}

// recentActivity merges products and orders into one feed, newest first.
// The merge input is products then orders, each in creation order; the stable
// sort keeps that order among equal timestamps.
func recentActivity(products []catalog.Product, orders []trade.Order) []ActivityEntry {
	entries := make([]ActivityEntry, 0, len(products)+len(orders))
	for i := range products {
		p := &products[i]
		entries = append(entries, ActivityEntry{
			ID:     p.ID,
			Type:   ActivityProduct,
			Status: string(p.Status),
			Date:   p.CreatedAt,
		})
	}
	// The order reader returns newest first
	for i := len(orders) - 1; i >= 0; i-- {
		o := &orders[i]
		amount := o.TotalPrice
		entries = append(entries, ActivityEntry{
			ID:     o.ID,
			Type:   ActivityOrder,
			Amount: &amount,
			Status: string(o.Status),
			Date:   o.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	if len(entries) > RecentActivityLimit {
		entries = entries[:RecentActivityLimit]
	}
	return entries
}
