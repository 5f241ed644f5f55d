package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	AggregateModel
	ProductID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductName     string            `gorm:"type:varchar(200);not null"`
	BuyerID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	SellerID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Quantity        int               `gorm:"not null"`
	UnitPrice       decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	TotalPrice      decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Status          trade.OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DeliveryAddress string            `gorm:"type:text;not null"`
	UrgentDelivery  bool              `gorm:"not null;default:false"`
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CancelledBy     *uuid.UUID `gorm:"type:uuid"`
	StockRestoredAt *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	return &trade.Order{
		BaseAggregateRoot: m.root(),
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		BuyerID:           m.BuyerID,
		SellerID:          m.SellerID,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		TotalPrice:        m.TotalPrice,
		Status:            m.Status,
		DeliveryAddress:   m.DeliveryAddress,
		UrgentDelivery:    m.UrgentDelivery,
		ConfirmedAt:       m.ConfirmedAt,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
		CancelledAt:       m.CancelledAt,
		CancelledBy:       m.CancelledBy,
		StockRestoredAt:   m.StockRestoredAt,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.setRoot(o.BaseAggregateRoot)
	m.ProductID = o.ProductID
	m.ProductName = o.ProductName
	m.BuyerID = o.BuyerID
	m.SellerID = o.SellerID
	m.Quantity = o.Quantity
	m.UnitPrice = o.UnitPrice
	m.TotalPrice = o.TotalPrice
	m.Status = o.Status
	m.DeliveryAddress = o.DeliveryAddress
	m.UrgentDelivery = o.UrgentDelivery
	m.ConfirmedAt = o.ConfirmedAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.CancelledBy = o.CancelledBy
	m.StockRestoredAt = o.StockRestoredAt
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
