package notification

import (
	"context"

	"github.com/google/uuid"
)

// NotificationRepository defines the persistence contract for notifications
type NotificationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByRecipient returns the recipient's notifications, newest first
	FindByRecipient(ctx context.Context, recipientID uuid.UUID) ([]Notification, error)

	// Save inserts or updates a notification
	Save(ctx context.Context, n *Notification) error
}
