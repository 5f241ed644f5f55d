package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the approval status of a product listing
type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "PENDING"
	ProductStatusApproved ProductStatus = "APPROVED"
	ProductStatusRejected ProductStatus = "REJECTED"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusPending, ProductStatusApproved, ProductStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ProductStatus) CanTransitionTo(target ProductStatus) bool {
	switch s {
	case ProductStatusPending:
		return target == ProductStatusApproved || target == ProductStatusRejected
	case ProductStatusApproved, ProductStatusRejected:
		return false // Review is final
	}
	return false
}

// ProductUnit is how a product's quantity is counted
type ProductUnit string

const (
	ProductUnitWeight ProductUnit = "WEIGHT" // kilograms
	ProductUnitCount  ProductUnit = "COUNT"  // pieces
	ProductUnitDozen  ProductUnit = "DOZEN"
)

// IsValid checks if the unit is a valid ProductUnit
func (u ProductUnit) IsValid() bool {
	switch u {
	case ProductUnitWeight, ProductUnitCount, ProductUnitDozen:
		return true
	}
	return false
}

// String returns the string representation of ProductUnit
func (u ProductUnit) String() string {
	return string(u)
}

// ProductCategory is the closed set of produce categories
type ProductCategory string

const (
	CategoryVegetables ProductCategory = "VEGETABLES"
	CategoryFruits     ProductCategory = "FRUITS"
	CategoryGrains     ProductCategory = "GRAINS"
	CategoryDairy      ProductCategory = "DAIRY"
	CategoryOther      ProductCategory = "OTHER"
)

// AllCategories lists every category in display order
var AllCategories = []ProductCategory{
	CategoryVegetables,
	CategoryFruits,
	CategoryGrains,
	CategoryDairy,
	CategoryOther,
}

// IsValid checks if the category is a valid ProductCategory
func (c ProductCategory) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of ProductCategory
func (c ProductCategory) String() string {
	return string(c)
}

// ProductDetails holds the producer-editable fields of a listing
type ProductDetails struct {
	Name         string
	Description  string
	PricePerUnit decimal.Decimal
	Quantity     int
	Unit         ProductUnit
	Category     ProductCategory
	Expiry       *time.Time
	IsUrgent     bool
	Location     string
	ForDonation  bool
}

// Validate checks the listing fields
func (d ProductDetails) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewValidationError("Product name cannot be empty")
	}
	if len(d.Name) > 200 {
		return shared.NewValidationError("Product name cannot exceed 200 characters")
	}
	if !d.PricePerUnit.IsPositive() {
		return shared.NewValidationError("Price per unit must be positive")
	}
	if d.Quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1")
	}
	if !d.Unit.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown unit: %s", d.Unit))
	}
	if !d.Category.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown category: %s", d.Category))
	}
	return nil
}

// Product is the aggregate root for a producer's listing
type Product struct {
	shared.BaseAggregateRoot
	OwnerID      uuid.UUID
	Name         string
	Description  string
	PricePerUnit decimal.Decimal
	Quantity     int
	Unit         ProductUnit
	Category     ProductCategory
	Status       ProductStatus
	Expiry       *time.Time
	IsUrgent     bool
	Location     string
	ForDonation  bool
	ReviewedBy   *uuid.UUID
	ReviewedAt   *time.Time
	RejectReason string
}

// NewProduct creates a new PENDING listing owned by ownerID
func NewProduct(ownerID uuid.UUID, details ProductDetails) (*Product, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("Owner ID cannot be empty")
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		Status:            ProductStatusPending,
	}
	p.applyDetails(details)

	p.Record(NewProductListedEvent(p))

	return p, nil
}

func (p *Product) applyDetails(d ProductDetails) {
	p.Name = strings.TrimSpace(d.Name)
	p.Description = d.Description
	p.PricePerUnit = d.PricePerUnit
	p.Quantity = d.Quantity
	p.Unit = d.Unit
	p.Category = d.Category
	p.Expiry = d.Expiry
	p.IsUrgent = d.IsUrgent
	p.Location = d.Location
	p.ForDonation = d.ForDonation
}

// Update replaces the listing fields while the product is still under review
func (p *Product) Update(details ProductDetails) error {
	if p.Status != ProductStatusPending {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot edit product in %s status", p.Status))
	}
	if err := details.Validate(); err != nil {
		return err
	}
	p.applyDetails(details)
	p.Touch(time.Now())
	return nil
}

// Approve makes the listing visible to buyers
func (p *Product) Approve(reviewerID uuid.UUID) error {
	if !p.Status.CanTransitionTo(ProductStatusApproved) {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot approve product in %s status", p.Status))
	}

	now := time.Now()
	p.Status = ProductStatusApproved
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.Touch(now)

	p.Record(NewProductApprovedEvent(p))

	return nil
}

// Reject closes the listing permanently
func (p *Product) Reject(reviewerID uuid.UUID, reason string) error {
	if !p.Status.CanTransitionTo(ProductStatusRejected) {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot reject product in %s status", p.Status))
	}

	now := time.Now()
	p.Status = ProductStatusRejected
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.RejectReason = reason
	p.Touch(now)

	p.Record(NewProductRejectedEvent(p))

	return nil
}

// Reserve takes qty units out of the available quantity for an order
func (p *Product) Reserve(qty int) error {
	if qty < 1 {
		return shared.NewValidationError("Quantity must be at least 1")
	}
	if p.Status != ProductStatusApproved {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot order product in %s status", p.Status))
	}
	if qty > p.Quantity {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Requested %d but only %d available", qty, p.Quantity))
	}
	p.Quantity -= qty
	p.Touch(time.Now())
	return nil
}

// Restore returns previously reserved units, e.g. after a cancellation
func (p *Product) Restore(qty int) error {
	if qty < 1 {
		return shared.NewValidationError("Quantity must be at least 1")
	}
	p.Quantity += qty
	p.Touch(time.Now())
	return nil
}

// CanDelete reports whether the owner may still withdraw the listing
func (p *Product) CanDelete() bool {
	return p.Status == ProductStatusPending
}

// IsVisibleToBuyers reports whether buyers may see and order the product
func (p *Product) IsVisibleToBuyers() bool {
	return p.Status == ProductStatusApproved
}

// IsOwnedBy reports whether the actor listed this product
func (p *Product) IsOwnedBy(actorID uuid.UUID) bool {
	return p.OwnerID == actorID
}

// GetPriceMoney returns the unit price as Money
func (p *Product) GetPriceMoney() valueobject.Money {
	return valueobject.Price(p.PricePerUnit)
}
