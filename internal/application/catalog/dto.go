package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ListProductRequest represents a request to put produce on the catalog
type ListProductRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"max=2000"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" binding:"required"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
	Unit         string          `json:"unit" binding:"required,product_unit"`
	Category     string          `json:"category" binding:"required,product_category"`
	Expiry       *time.Time      `json:"expiry"`
	IsUrgent     bool            `json:"is_urgent"`
	Location     string          `json:"location" binding:"max=200"`
	ForDonation  bool            `json:"for_donation"`
}

// UpdateProductRequest carries the full set of editable listing fields
type UpdateProductRequest ListProductRequest

// RejectProductRequest carries the reviewer's reason
type RejectProductRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ProductQuery represents the filters accepted when browsing the catalog
type ProductQuery struct {
	OwnerID    string `form:"owner_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Category   string `form:"category" binding:"omitempty,product_category"`
	UrgentOnly bool   `form:"urgent"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
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

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	DisplayPrice string          `json:"display_price"`
	Quantity     int             `json:"quantity"`
	Unit         string          `json:"unit"`
	Category     string          `json:"category"`
	Status       string          `json:"status"`
	Expiry       *time.Time      `json:"expiry,omitempty"`
	IsUrgent     bool            `json:"is_urgent"`
	Location     string          `json:"location,omitempty"`
	ForDonation  bool            `json:"for_donation"`
	ReviewedBy   *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
	RejectReason string          `json:"reject_reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToDetails converts the request into domain listing fields
func (r ListProductRequest) ToDetails() catalog.ProductDetails {
	return catalog.ProductDetails{
		Name:         r.Name,
		Description:  r.Description,
		PricePerUnit: r.PricePerUnit,
		Quantity:     r.Quantity,
		Unit:         catalog.ProductUnit(r.Unit),
		Category:     catalog.ProductCategory(r.Category),
		Expiry:       r.Expiry,
		IsUrgent:     r.IsUrgent,
		Location:     r.Location,
		ForDonation:  r.ForDonation,
	}
}

// ToFilter converts the query into a repository filter
func (q ProductQuery) ToFilter() catalog.ProductFilter {
	f := catalog.ProductFilter{
		OwnerID:    optionalID(q.OwnerID),
		Status:     catalog.ProductStatus(q.Status),
		Category:   catalog.ProductCategory(q.Category),
		UrgentOnly: q.UrgentOnly,
	}
	f.Page = q.Page
	f.PageSize = q.PageSize
	return f
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Description:  p.Description,
		PricePerUnit: p.PricePerUnit,
		DisplayPrice: p.GetPriceMoney().String(),
		Quantity:     p.Quantity,
		Unit:         string(p.Unit),
		Category:     string(p.Category),
		Status:       string(p.Status),
		Expiry:       p.Expiry,
		IsUrgent:     p.IsUrgent,
		Location:     p.Location,
		ForDonation:  p.ForDonation,
		ReviewedBy:   p.ReviewedBy,
		ReviewedAt:   p.ReviewedAt,
		RejectReason: p.RejectReason,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
