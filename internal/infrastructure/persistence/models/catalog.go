package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	OwnerID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	Name         string                  `gorm:"type:varchar(200);not null"`
	Description  string                  `gorm:"type:text"`
	PricePerUnit decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Quantity     int                     `gorm:"not null;check:chk_products_quantity,quantity >= 0"`
	Unit         catalog.ProductUnit     `gorm:"type:varchar(20);not null"`
	Category     catalog.ProductCategory `gorm:"type:varchar(20);not null;index"`
	Status       catalog.ProductStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Expiry       *time.Time
	IsUrgent     bool       `gorm:"not null;default:false"`
	Location     string     `gorm:"type:varchar(200)"`
	ForDonation  bool       `gorm:"not null;default:false"`
	ReviewedBy   *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt   *time.Time
	RejectReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.root(),
		OwnerID:           m.OwnerID,
		Name:              m.Name,
		Description:       m.Description,
		PricePerUnit:      m.PricePerUnit,
		Quantity:          m.Quantity,
		Unit:              m.Unit,
		Category:          m.Category,
		Status:            m.Status,
		Expiry:            m.Expiry,
		IsUrgent:          m.IsUrgent,
		Location:          m.Location,
		ForDonation:       m.ForDonation,
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
		RejectReason:      m.RejectReason,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.setRoot(p.BaseAggregateRoot)
	m.OwnerID = p.OwnerID
	m.Name = p.Name
	m.Description = p.Description
	m.PricePerUnit = p.PricePerUnit
	m.Quantity = p.Quantity
	m.Unit = p.Unit
	m.Category = p.Category
	m.Status = p.Status
	m.Expiry = p.Expiry
	m.IsUrgent = p.IsUrgent
	m.Location = p.Location
	m.ForDonation = p.ForDonation
	m.ReviewedBy = p.ReviewedBy
	m.ReviewedAt = p.ReviewedAt
	m.RejectReason = p.RejectReason
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
