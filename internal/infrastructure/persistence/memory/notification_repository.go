package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/notification"
	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// NotificationRepository implements notification.NotificationRepository in memory
type NotificationRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]notification.Notification
	seq   []uuid.UUID
}

// NewNotificationRepository creates an empty NotificationRepository
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{
		items: make(map[uuid.UUID]notification.Notification),
	}
}

// FindByID finds a notification by its ID
func (r *NotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError("Notification not found")
	}
	return &n, nil
}

// FindByRecipient returns the recipient's notifications, newest first
func (r *NotificationRepository) FindByRecipient(ctx context.Context, recipientID uuid.UUID) ([]notification.Notification, error) {
	r.mu.RLock()
	result := make([]notification.Notification, 0)
	for i := len(r.seq) - 1; i >= 0; i-- {
		n := r.items[r.seq[i]]
		if n.RecipientID == recipientID {
			result = append(result, n)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Save inserts or updates a notification
func (r *NotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[n.ID]; !exists {
		r.seq = append(r.seq, n.ID)
	}
	r.items[n.ID] = *n
	return nil
}

// Ensure NotificationRepository implements notification.NotificationRepository
var _ notification.NotificationRepository = (*NotificationRepository)(nil)
