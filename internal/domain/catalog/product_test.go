package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func validDetails() ProductDetails {
	return ProductDetails{
		Name:         "Tomatoes",
		Description:  "Fresh red tomatoes",
		PricePerUnit: decimal.RequireFromString("2.50"),
		Quantity:     100,
		Unit:         ProductUnitWeight,
		Category:     CategoryVegetables,
		Location:     "Kathmandu",
	}
}

func createTestProduct(t *testing.T) *Product {
	p, err := NewProduct(uuid.New(), validDetails())
	require.NoError(t, err)
	return p
}

func createApprovedProduct(t *testing.T) *Product {
	p := createTestProduct(t)
	require.NoError(t, p.Approve(uuid.New()))
	p.DiscardEvents()
	return p
}

// ============================================
// ProductStatus Tests
// ============================================

func TestProductStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     ProductStatus
		to       ProductStatus
		canTrans bool
	}{
		{ProductStatusPending, ProductStatusApproved, true},
		{ProductStatusPending, ProductStatusRejected, true},
		{ProductStatusPending, ProductStatusPending, false},
		{ProductStatusApproved, ProductStatusRejected, false},
		{ProductStatusApproved, ProductStatusPending, false},
		{ProductStatusRejected, ProductStatusApproved, false},
		{ProductStatusRejected, ProductStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestEnums_IsValid(t *testing.T) {
	assert.True(t, ProductStatusApproved.IsValid())
	assert.False(t, ProductStatus("SOLD").IsValid())
	assert.True(t, ProductUnitDozen.IsValid())
	assert.False(t, ProductUnit("LITRE").IsValid())
	for _, c := range AllCategories {
		assert.True(t, c.IsValid(), c.String())
	}
	assert.False(t, ProductCategory("MEAT").IsValid())
}

// ============================================
// NewProduct Tests
// ============================================

func TestNewProduct(t *testing.T) {
	t.Run("creates pending product with listed event", func(t *testing.T) {
		ownerID := uuid.New()
		expiry := time.Now().Add(72 * time.Hour)
		d := validDetails()
		d.Expiry = &expiry
		d.IsUrgent = true

		p, err := NewProduct(ownerID, d)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, ownerID, p.OwnerID)
		assert.Equal(t, ProductStatusPending, p.Status)
		assert.Equal(t, 100, p.Quantity)
		assert.Equal(t, 1, p.Version)
		assert.True(t, p.IsUrgent)
		assert.Equal(t, &expiry, p.Expiry)
		assert.False(t, p.IsVisibleToBuyers())

		events := p.PendingEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductListed, events[0].EventType())
	})

	tests := []struct {
		name   string
		mutate func(d *ProductDetails)
	}{
		{"zero price", func(d *ProductDetails) { d.PricePerUnit = decimal.Zero }},
		{"negative price", func(d *ProductDetails) { d.PricePerUnit = decimal.NewFromInt(-1) }},
		{"zero quantity", func(d *ProductDetails) { d.Quantity = 0 }},
		{"unknown unit", func(d *ProductDetails) { d.Unit = "LITRE" }},
		{"unknown category", func(d *ProductDetails) { d.Category = "MEAT" }},
		{"blank name", func(d *ProductDetails) { d.Name = "  " }},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)
			_, err := NewProduct(uuid.New(), d)
			assert.True(t, shared.IsCode(err, shared.CodeValidation), "got %v", err)
		})
	}

	t.Run("rejects missing owner", func(t *testing.T) {
		_, err := NewProduct(uuid.Nil, validDetails())
		assert.True(t, shared.IsCode(err, shared.CodeValidation))
	})
}

// ============================================
// Review Tests
// ============================================

func TestProduct_Approve(t *testing.T) {
	t.Run("approves pending product", func(t *testing.T) {
		p := createTestProduct(t)
		p.DiscardEvents()
		reviewer := uuid.New()

		require.NoError(t, p.Approve(reviewer))

		assert.Equal(t, ProductStatusApproved, p.Status)
		assert.Equal(t, &reviewer, p.ReviewedBy)
		assert.NotNil(t, p.ReviewedAt)
		assert.True(t, p.IsVisibleToBuyers())
		events := p.PendingEvents()
		require.Len(t, events, 1)
		approved, ok := events[0].(*ProductApprovedEvent)
		require.True(t, ok)
		assert.Equal(t, p.OwnerID, approved.OwnerID)
		assert.Equal(t, reviewer, approved.ReviewerID)
	})

	t.Run("cannot approve twice", func(t *testing.T) {
		p := createApprovedProduct(t)
		err := p.Approve(uuid.New())
		assert.True(t, shared.IsCode(err, shared.CodeInvalidTransition))
		assert.Empty(t, p.PendingEvents())
	})
}

func TestProduct_Reject(t *testing.T) {
	t.Run("rejects pending product", func(t *testing.T) {
		p := createTestProduct(t)
		p.DiscardEvents()

		require.NoError(t, p.Reject(uuid.New(), "blurry photos"))

		assert.Equal(t, ProductStatusRejected, p.Status)
		assert.Equal(t, "blurry photos", p.RejectReason)
		events := p.PendingEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductRejected, events[0].EventType())
	})

	t.Run("cannot reject approved product", func(t *testing.T) {
		p := createApprovedProduct(t)
		err := p.Reject(uuid.New(), "")
		assert.True(t, shared.IsCode(err, shared.CodeInvalidTransition))
		assert.Equal(t, ProductStatusApproved, p.Status)
	})

	t.Run("rejected is final", func(t *testing.T) {
		p := createTestProduct(t)
		require.NoError(t, p.Reject(uuid.New(), ""))
		assert.Error(t, p.Approve(uuid.New()))
		assert.Error(t, p.Reject(uuid.New(), ""))
	})
}

// ============================================
// Stock Tests
// ============================================

func TestProduct_Reserve(t *testing.T) {
	t.Run("decrements quantity", func(t *testing.T) {
		p := createApprovedProduct(t)
		require.NoError(t, p.Reserve(30))
		assert.Equal(t, 70, p.Quantity)
	})

	t.Run("fails with insufficient stock and leaves quantity", func(t *testing.T) {
		p := createApprovedProduct(t)
		err := p.Reserve(101)
		assert.True(t, shared.IsCode(err, shared.CodeInsufficientStock))
		assert.Equal(t, 100, p.Quantity)
	})

	t.Run("can take the whole quantity", func(t *testing.T) {
		p := createApprovedProduct(t)
		require.NoError(t, p.Reserve(100))
		assert.Equal(t, 0, p.Quantity)
	})

	t.Run("pending products cannot be ordered", func(t *testing.T) {
		p := createTestProduct(t)
		err := p.Reserve(1)
		assert.True(t, shared.IsCode(err, shared.CodeInvalidTransition))
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		p := createApprovedProduct(t)
		assert.True(t, shared.IsCode(p.Reserve(0), shared.CodeValidation))
	})
}

func TestProduct_Restore(t *testing.T) {
	p := createApprovedProduct(t)
	require.NoError(t, p.Reserve(10))
	require.NoError(t, p.Restore(10))
	assert.Equal(t, 100, p.Quantity)
	assert.Error(t, p.Restore(0))
}

// ============================================
// Owner Edit Tests
// ============================================

func TestProduct_Update(t *testing.T) {
	t.Run("owner edits while pending", func(t *testing.T) {
		p := createTestProduct(t)
		d := validDetails()
		d.Name = "Cherry tomatoes"
		d.PricePerUnit = decimal.RequireFromString("3.10")
		d.ForDonation = true

		require.NoError(t, p.Update(d))
		assert.Equal(t, "Cherry tomatoes", p.Name)
		assert.True(t, p.PricePerUnit.Equal(decimal.RequireFromString("3.10")))
		assert.True(t, p.ForDonation)
		assert.True(t, p.CanDelete())
	})

	t.Run("validates new details", func(t *testing.T) {
		p := createTestProduct(t)
		d := validDetails()
		d.Quantity = 0
		assert.True(t, shared.IsCode(p.Update(d), shared.CodeValidation))
	})

	t.Run("approved listings are frozen", func(t *testing.T) {
		p := createApprovedProduct(t)
		err := p.Update(validDetails())
		assert.True(t, shared.IsCode(err, shared.CodeInvalidTransition))
		assert.False(t, p.CanDelete())
	})
}

func TestProductFilter_Matches(t *testing.T) {
	p := createApprovedProduct(t)
	owner := p.OwnerID
	other := uuid.New()

	assert.True(t, ProductFilter{}.Matches(p))
	assert.True(t, ProductFilter{OwnerID: &owner, Status: ProductStatusApproved, Category: CategoryVegetables}.Matches(p))
	assert.False(t, ProductFilter{OwnerID: &other}.Matches(p))
	assert.False(t, ProductFilter{Status: ProductStatusPending}.Matches(p))
	assert.False(t, ProductFilter{Category: CategoryDairy}.Matches(p))
	assert.False(t, ProductFilter{UrgentOnly: true}.Matches(p))
}
