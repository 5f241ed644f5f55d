package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Activity kinds in the recent activity feed
const (
	ActivityProduct = "PRODUCT"
	ActivityOrder   = "ORDER"
)

// RecentActivityLimit caps the recent activity feed
const RecentActivityLimit = 10

// ActivityEntry is one product or order in the recent activity feed
type ActivityEntry struct {
	ID     uuid.UUID        `json:"id"`
	Type   string           `json:"type"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Status string           `json:"status"`
	Date   time.Time        `json:"date"`
}

// AnalyticsResponse is the marketplace summary
type AnalyticsResponse struct {
	TotalProducts       int             `json:"total_products"`
	ActiveProducts      int             `json:"active_products"`
	TotalOrders         int             `json:"total_orders"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	UrgentSales         int             `json:"urgent_sales"`
	AverageDeliveryDays float64         `json:"average_delivery_days"`
	ProductsByCategory  map[string]int  `json:"products_by_category"`
	OrdersByStatus      map[string]int  `json:"orders_by_status"`
	RecentActivity      []ActivityEntry `json:"recent_activity"`
	GeneratedAt         time.Time       `json:"generated_at"`
}
