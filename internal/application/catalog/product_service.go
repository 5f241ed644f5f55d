// Package catalog implements the product catalog: listing, review and the
// stock reservations used by the order ledger.
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/kasamthapa/krisi/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.MarketplaceMetrics
	logger         *zap.Logger
	maxRetries     int
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		logger:      logger.Named("catalog"),
		maxRetries:  shared.DefaultMaxConflictRetries,
	}
}

// SetEventPublisher sets the event publisher for cross-context communication
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *ProductService) SetMetrics(metrics *telemetry.MarketplaceMetrics) {
	s.metrics = metrics
}

// SetMaxConflictRetries bounds the optimistic-lock retry loop
func (s *ProductService) SetMaxConflictRetries(n int) {
	if n > 0 {
		s.maxRetries = n
	}
}

// List creates a PENDING listing owned by the actor
func (s *ProductService) List(ctx context.Context, actor shared.Actor, req ListProductRequest) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "list",
		telemetry.SpanAttrActorID, actor.ID,
		telemetry.SpanAttrActorRole, actor.Role,
	)
	defer span.End()

	if err := actor.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !actor.Role.CanListProducts() {
		err := shared.NewUnauthorizedError(fmt.Sprintf("Role %s cannot list products", actor.Role))
		telemetry.RecordError(span, err)
		return nil, err
	}

	product, err := catalog.NewProduct(actor.ID, req.ToDetails())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrProductID, product.ID)

	s.logger.Info("Product listed",
		zap.String("product_id", product.ID.String()),
		zap.String("owner_id", actor.ID.String()),
		zap.String("category", string(product.Category)),
	)
	s.metrics.RecordProductListed(ctx, string(product.Category))
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Approve makes a PENDING listing visible to buyers
func (s *ProductService) Approve(ctx context.Context, actor shared.Actor, productID uuid.UUID) (*ProductResponse, error) {
	return s.review(ctx, actor, productID, "approve", func(p *catalog.Product) error {
		return p.Approve(actor.ID)
	})
}

// Reject closes a PENDING listing
func (s *ProductService) Reject(ctx context.Context, actor shared.Actor, productID uuid.UUID, reason string) (*ProductResponse, error) {
	return s.review(ctx, actor, productID, "reject", func(p *catalog.Product) error {
		return p.Reject(actor.ID, reason)
	})
}

func (s *ProductService) review(
	ctx context.Context,
	actor shared.Actor,
	productID uuid.UUID,
	outcome string,
	apply func(*catalog.Product) error,
) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", outcome,
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrActorID, actor.ID,
	)
	defer span.End()

	if err := actor.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !actor.Role.CanApprove() {
		err := shared.NewUnauthorizedError(fmt.Sprintf("Role %s cannot review products", actor.Role))
		telemetry.RecordError(span, err)
		return nil, err
	}

	var product *catalog.Product
	err := shared.RetryOnConflict(ctx, s.maxRetries, func() error {
		var err error
		product, err = s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := apply(product); err != nil {
			return err
		}
		return s.productRepo.SaveWithLock(ctx, product)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Product reviewed",
		zap.String("product_id", productID.String()),
		zap.String("reviewer_id", actor.ID.String()),
		zap.String("status", string(product.Status)),
	)
	s.metrics.RecordProductReviewed(ctx, outcome)
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Query returns products matching the filter in creation order. Callers who
// cannot review listings only see approved products, except their own.
func (s *ProductService) Query(ctx context.Context, actor shared.Actor, filter catalog.ProductFilter) ([]ProductResponse, error) {
	if !canSeeUnreviewed(actor, filter.OwnerID) {
		filter.Status = catalog.ProductStatusApproved
	}
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// GetByID retrieves a product by ID. Listings hidden from the actor read as not found.
func (s *ProductService) GetByID(ctx context.Context, actor shared.Actor, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsVisibleToBuyers() && !canSeeUnreviewed(actor, &product.OwnerID) {
		return nil, shared.NewNotFoundError("Product not found")
	}
	response := ToProductResponse(product)
	return &response, nil
}

// canSeeUnreviewed reports whether actor may read listings that are not approved.
// The zero Actor is an anonymous caller.
func canSeeUnreviewed(actor shared.Actor, ownerID *uuid.UUID) bool {
	if actor.Role.CanApprove() {
		return true
	}
	return ownerID != nil && actor.ID != uuid.Nil && *ownerID == actor.ID
}

// Update replaces the listing fields. Only the owner may edit, and only while PENDING.
func (s *ProductService) Update(ctx context.Context, actor shared.Actor, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "update",
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrActorID, actor.ID,
	)
	defer span.End()

	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var product *catalog.Product
	err := shared.RetryOnConflict(ctx, s.maxRetries, func() error {
		var err error
		product, err = s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.IsOwnedBy(actor.ID) {
			return shared.NewUnauthorizedError("Only the owner can edit this product")
		}
		if err := product.Update(ListProductRequest(req).ToDetails()); err != nil {
			return err
		}
		return s.productRepo.SaveWithLock(ctx, product)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete withdraws a PENDING listing. Only the owner may delete it.
func (s *ProductService) Delete(ctx context.Context, actor shared.Actor, productID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "delete",
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrActorID, actor.ID,
	)
	defer span.End()

	if err := actor.Validate(); err != nil {
		return err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if !product.IsOwnedBy(actor.ID) {
		return shared.NewUnauthorizedError("Only the owner can delete this product")
	}
	if !product.CanDelete() {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot delete product in %s status", product.Status))
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", productID.String()))
	return nil
}

// Reserve atomically takes qty units of an APPROVED product and returns the
// snapshot the order is priced from.
func (s *ProductService) Reserve(ctx context.Context, productID uuid.UUID, qty int) (trade.ProductSnapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "reserve",
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrQuantity, qty,
	)
	defer span.End()

	if qty < 1 {
		return trade.ProductSnapshot{}, shared.NewValidationError("Quantity must be at least 1")
	}

	product, err := s.productRepo.ReserveStock(ctx, productID, qty)
	if err != nil {
		telemetry.RecordError(span, err)
		return trade.ProductSnapshot{}, err
	}

	s.logger.Debug("Stock reserved",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", qty),
		zap.Int("remaining", product.Quantity),
	)

	return trade.ProductSnapshot{
		ProductID:    product.ID,
		OwnerID:      product.OwnerID,
		Name:         product.Name,
		PricePerUnit: product.PricePerUnit,
	}, nil
}

// Restore returns qty previously reserved units to the product
func (s *ProductService) Restore(ctx context.Context, productID uuid.UUID, qty int) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "restore",
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrQuantity, qty,
	)
	defer span.End()

	product, err := s.productRepo.RestoreStock(ctx, productID, qty)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Debug("Stock restored",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", qty),
		zap.Int("available", product.Quantity),
	)
	return nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.PullEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
	}
}
