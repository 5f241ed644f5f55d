package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/notification"
)

// NotificationModel is the persistence model for the Notification entity.
type NotificationModel struct {
	BaseModel
	RecipientID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	Channel       notification.Channel `gorm:"type:varchar(10);not null"`
	Message       string               `gorm:"type:text;not null"`
	Status        notification.Status  `gorm:"type:varchar(10);not null;index"`
	FailureReason string               `gorm:"type:text"`
	ResendOf      *uuid.UUID           `gorm:"type:uuid"`
	SentAt        *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		ID:            m.ID,
		RecipientID:   m.RecipientID,
		Channel:       m.Channel,
		Message:       m.Message,
		Status:        m.Status,
		FailureReason: m.FailureReason,
		ResendOf:      m.ResendOf,
		CreatedAt:     m.CreatedAt,
		SentAt:        m.SentAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification.
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		BaseModel: BaseModel{
			ID:        n.ID,
			CreatedAt: n.CreatedAt.UTC(),
			UpdatedAt: n.UpdatedAt.UTC(),
		},
		RecipientID:   n.RecipientID,
		Channel:       n.Channel,
		Message:       n.Message,
		Status:        n.Status,
		FailureReason: n.FailureReason,
		ResendOf:      n.ResendOf,
		SentAt:        n.SentAt,
	}
}
