package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return findProduct(r.db.WithContext(ctx), id)
}

func findProduct(tx *gorm.DB, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := tx.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Product not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns matching products in creation order
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.UrgentOnly {
		query = query.Where("is_urgent = ?", true)
	}
	query = paginate(query.Order("created_at ASC").Order("seq ASC"), filter.Pagination)

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Save inserts a new product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	err := r.db.WithContext(ctx).Create(models.ProductModelFromDomain(product)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Product already exists")
	}
	return err
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.ProductModelFromDomain(product)
		next := product.Version + 1

		result := tx.Model(&models.ProductModel{}).
			Where("id = ? AND version = ?", product.ID, product.Version).
			Updates(map[string]any{
				"name":           m.Name,
				"description":    m.Description,
				"price_per_unit": m.PricePerUnit,
				"quantity":       m.Quantity,
				"unit":           m.Unit,
				"category":       m.Category,
				"status":         m.Status,
				"expiry":         m.Expiry,
				"is_urgent":      m.IsUrgent,
				"location":       m.Location,
				"for_donation":   m.ForDonation,
				"reviewed_by":    m.ReviewedBy,
				"reviewed_at":    m.ReviewedAt,
				"reject_reason":  m.RejectReason,
				"updated_at":     m.UpdatedAt,
				"version":        next,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return versionMiss(tx, &models.ProductModel{}, product.ID, "Product not found",
				"The product has been modified by another user")
		}

		product.Version = next
		return nil
	})
}

// Delete removes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Product not found")
	}
	return nil
}

// ReserveStock decrements the quantity with a single conditional UPDATE so
// concurrent reservations can never drive it below zero.
func (r *GormProductRepository) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (*catalog.Product, error) {
	if qty < 1 {
		return nil, shared.NewValidationError("Quantity must be at least 1")
	}

	var reserved *catalog.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ProductModel{}).
			Where("id = ? AND status = ? AND quantity >= ?", id, catalog.ProductStatusApproved, qty).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity - ?", qty),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}

		current, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		if result.RowsAffected == 0 {
			// Replay the check on the stored row to report why it failed
			if err := current.Reserve(qty); err != nil {
				return err
			}
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "Stock changed while reserving")
		}
		reserved = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reserved, nil
}

// RestoreStock adds qty back to the available quantity
func (r *GormProductRepository) RestoreStock(ctx context.Context, id uuid.UUID, qty int) (*catalog.Product, error) {
	if qty < 1 {
		return nil, shared.NewValidationError("Quantity must be at least 1")
	}

	var restored *catalog.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ProductModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity + ?", qty),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("Product not found")
		}

		p, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		restored = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
