package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// Channel is the medium a notification is delivered through
type Channel string

const (
	ChannelSMS    Channel = "SMS"
	ChannelEmail  Channel = "EMAIL"
	ChannelSystem Channel = "SYSTEM"
)

// IsValid checks if the channel is a valid Channel
func (c Channel) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelEmail, ChannelSystem:
		return true
	}
	return false
}

// String returns the string representation of Channel
func (c Channel) String() string {
	return string(c)
}

// ParseChannel parses a channel name case-insensitively
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("Unknown notification channel: %s", s))
	}
	return c, nil
}

// Status is the delivery status of a notification
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Notification is the outbound record of one message to one recipient
type Notification struct {
	ID            uuid.UUID
	RecipientID   uuid.UUID
	Channel       Channel
	Message       string
	Status        Status
	FailureReason string
	ResendOf      *uuid.UUID
	CreatedAt     time.Time
	SentAt        *time.Time
	UpdatedAt     time.Time
}

// NewNotification creates a PENDING notification
func NewNotification(recipientID uuid.UUID, channel Channel, message string) (*Notification, error) {
	if recipientID == uuid.Nil {
		return nil, shared.NewValidationError("Recipient ID cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown notification channel: %s", channel))
	}
	if strings.TrimSpace(message) == "" {
		return nil, shared.NewValidationError("Message cannot be empty")
	}

	now := time.Now()
	return &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Channel:     channel,
		Message:     message,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkSent records a successful delivery
func (n *Notification) MarkSent() error {
	if n.Status != StatusPending {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot mark %s notification as sent", n.Status))
	}
	now := time.Now()
	n.Status = StatusSent
	n.SentAt = &now
	n.UpdatedAt = now
	return nil
}

// MarkFailed records a failed delivery. FAILED is terminal.
func (n *Notification) MarkFailed(reason string) error {
	if n.Status != StatusPending {
		return shared.NewInvalidTransitionError(fmt.Sprintf("Cannot mark %s notification as failed", n.Status))
	}
	n.Status = StatusFailed
	n.FailureReason = reason
	n.UpdatedAt = time.Now()
	return nil
}

// NewResend creates a fresh PENDING copy of a FAILED notification
func (n *Notification) NewResend() (*Notification, error) {
	if n.Status != StatusFailed {
		return nil, shared.NewInvalidTransitionError(
			fmt.Sprintf("Only failed notifications can be resent, this one is %s", n.Status))
	}
	resend, err := NewNotification(n.RecipientID, n.Channel, n.Message)
	if err != nil {
		return nil, err
	}
	original := n.ID
	resend.ResendOf = &original
	return resend, nil
}
