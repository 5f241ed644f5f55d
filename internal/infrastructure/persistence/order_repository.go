package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/kasamthapa/krisi/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Order not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns matching orders, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.BuyerID != nil {
		query = query.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = paginate(query.Order("created_at DESC").Order("seq DESC"), filter.Pagination)

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Save inserts a new order
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	err := r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Order already exists")
	}
	return err
}

// SaveWithLock saves with optimistic locking (version check).
// Only the lifecycle columns are written; the product, parties and price are fixed at creation.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.OrderModelFromDomain(order)
		next := order.Version + 1

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]any{
				"status":           m.Status,
				"delivery_address": m.DeliveryAddress,
				"urgent_delivery":  m.UrgentDelivery,
				"confirmed_at":     m.ConfirmedAt,
				"shipped_at":       m.ShippedAt,
				"delivered_at":     m.DeliveredAt,
				"cancelled_at":     m.CancelledAt,
				"cancelled_by":     m.CancelledBy,
				"updated_at":       m.UpdatedAt,
				"version":          next,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return versionMiss(tx, &models.OrderModel{}, order.ID, "Order not found",
				"The order has been modified by another user")
		}

		order.Version = next
		return nil
	})
}

// Ensure GormOrderRepository implements trade.OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
