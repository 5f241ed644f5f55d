package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/notification"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository implements notification.NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification by its ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Notification not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRecipient returns the recipient's notifications, newest first
func (r *GormNotificationRepository) FindByRecipient(ctx context.Context, recipientID uuid.UUID) ([]notification.Notification, error) {
	var rows []models.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Order("seq DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]notification.Notification, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Save inserts or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "failure_reason", "sent_at", "updated_at"}),
		}).
		Create(models.NotificationModelFromDomain(n)).Error
}

// Ensure GormNotificationRepository implements notification.NotificationRepository
var _ notification.NotificationRepository = (*GormNotificationRepository)(nil)
