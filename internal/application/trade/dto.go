package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents a buyer's request to order a product
type CreateOrderRequest struct {
	ProductID       uuid.UUID `json:"product_id" binding:"required"`
	Quantity        int       `json:"quantity" binding:"required,min=1"`
	DeliveryAddress string    `json:"delivery_address" binding:"required,min=1,max=500"`
	UrgentDelivery  bool      `json:"urgent_delivery"`
}

// AdvanceStatusRequest represents a request to move an order along its lifecycle
type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// OrderQuery represents the filters accepted when listing orders
type OrderQuery struct {
	BuyerID   string `form:"buyer_id" binding:"omitempty,uuid"`
	SellerID  string `form:"seller_id" binding:"omitempty,uuid"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,order_status"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToFilter converts the query into a repository filter
func (q OrderQuery) ToFilter() trade.OrderFilter {
	f := trade.OrderFilter{
		BuyerID:   optionalID(q.BuyerID),
		SellerID:  optionalID(q.SellerID),
		ProductID: optionalID(q.ProductID),
		Status:    trade.OrderStatus(q.Status),
	}
	f.Page = q.Page
	f.PageSize = q.PageSize
	return f
}

// optionalID parses an already-validated id filter; empty means "any"
func optionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	BuyerID         uuid.UUID       `json:"buyer_id"`
	SellerID        uuid.UUID       `json:"seller_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	DisplayTotal    string          `json:"display_total"`
	Status          string          `json:"status"`
	DeliveryAddress string          `json:"delivery_address"`
	UrgentDelivery  bool            `json:"urgent_delivery"`
	ConfirmedAt     *time.Time      `json:"confirmed_at,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelledBy     *uuid.UUID      `json:"cancelled_by,omitempty"`
	StockRestoredAt *time.Time      `json:"stock_restored_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		ProductID:       o.ProductID,
		ProductName:     o.ProductName,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		Quantity:        o.Quantity,
		UnitPrice:       o.UnitPrice,
		TotalPrice:      o.TotalPrice,
		DisplayTotal:    o.GetTotalPriceMoney().String(),
		Status:          string(o.Status),
		DeliveryAddress: o.DeliveryAddress,
		UrgentDelivery:  o.UrgentDelivery,
		ConfirmedAt:     o.ConfirmedAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CancelledBy:     o.CancelledBy,
		StockRestoredAt: o.StockRestoredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}

// ToOrderResponses converts a slice of domain Orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}
