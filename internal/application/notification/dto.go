package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/notification"
)

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID            uuid.UUID  `json:"id"`
	RecipientID   uuid.UUID  `json:"recipient_id"`
	Channel       string     `json:"channel"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ResendOf      *uuid.UUID `json:"resend_of,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}

// NotificationQuery selects the recipient whose notifications are listed
type NotificationQuery struct {
	RecipientID string `form:"recipient_id" binding:"required,uuid"`
}

// ToNotificationResponse converts a domain Notification to NotificationResponse
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		RecipientID:   n.RecipientID,
		Channel:       string(n.Channel),
		Message:       n.Message,
		Status:        string(n.Status),
		FailureReason: n.FailureReason,
		ResendOf:      n.ResendOf,
		CreatedAt:     n.CreatedAt,
		SentAt:        n.SentAt,
	}
}

// ToNotificationResponses converts a slice of domain Notifications
func ToNotificationResponses(items []notification.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(items))
	for i := range items {
		responses[i] = ToNotificationResponse(&items[i])
	}
	return responses
}
