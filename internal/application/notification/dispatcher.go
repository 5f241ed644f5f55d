// Package notification implements outbound notifications. Records are stored
// PENDING and delivered asynchronously by a bounded worker pool.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/notification"
	"github.com/kasamthapa/krisi/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Failure reasons recorded when delivery never reaches the sender
const (
	ReasonQueueFull         = "dispatch queue full"
	ReasonDispatcherStopped = "dispatcher stopped"
)

// Sender delivers one notification over its channel
type Sender interface {
	Send(ctx context.Context, n notification.Notification) error
}

// Config holds dispatcher sizing
type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// DefaultConfig returns the dispatcher defaults
func DefaultConfig() Config {
	return Config{
		Workers:     4,
		QueueSize:   256,
		SendTimeout: 5 * time.Second,
	}
}

// Dispatcher stores notifications and hands them to a worker pool for delivery.
// Callers never block on delivery and dispatch failures never propagate.
type Dispatcher struct {
	repo    notification.NotificationRepository
	sender  Sender
	config  Config
	logger  *zap.Logger
	metrics *telemetry.MarketplaceMetrics

	queue chan notification.Notification

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Workers do not run until Start.
func NewDispatcher(repo notification.NotificationRepository, sender Sender, cfg Config, logger *zap.Logger) *Dispatcher {
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaults.SendTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		repo:   repo,
		sender: sender,
		config: cfg,
		logger: logger.Named("notifications"),
		queue:  make(chan notification.Notification, cfg.QueueSize),
	}
}

// SetMetrics sets the business metrics recorder
func (d *Dispatcher) SetMetrics(metrics *telemetry.MarketplaceMetrics) {
	d.metrics = metrics
}

// Start launches the worker pool. Calling it again is a no-op.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return errors.New("dispatcher already stopped")
	}
	if d.started {
		return nil
	}
	d.started = true

	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	d.logger.Info("Notification dispatcher started",
		zap.Int("workers", d.config.Workers),
		zap.Int("queue_size", d.config.QueueSize),
	)
	return nil
}

// Stop closes the queue and waits for the workers to drain it, or for ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		d.failUndelivered()
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification dispatcher did not drain: %w", ctx.Err())
	}
}

// failUndelivered marks everything still queued as FAILED when no worker ever ran
func (d *Dispatcher) failUndelivered() {
	for n := range d.queue {
		d.fail(context.Background(), n, ReasonDispatcherStopped)
	}
}

// Send stores a PENDING notification and queues it for delivery
func (d *Dispatcher) Send(ctx context.Context, recipientID uuid.UUID, channel notification.Channel, message string) (*NotificationResponse, error) {
	n, err := notification.NewNotification(recipientID, channel, message)
	if err != nil {
		return nil, err
	}
	return d.store(ctx, n)
}

// Resend re-issues a FAILED notification as a new PENDING record
func (d *Dispatcher) Resend(ctx context.Context, notificationID uuid.UUID) (*NotificationResponse, error) {
	original, err := d.repo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	resend, err := original.NewResend()
	if err != nil {
		return nil, err
	}
	return d.store(ctx, resend)
}

func (d *Dispatcher) store(ctx context.Context, n *notification.Notification) (*NotificationResponse, error) {
	if err := d.repo.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}
	response := ToNotificationResponse(n)
	d.enqueue(ctx, *n)
	return &response, nil
}

func (d *Dispatcher) enqueue(ctx context.Context, n notification.Notification) {
	d.mu.RLock()
	if d.stopped {
		d.mu.RUnlock()
		d.fail(ctx, n, ReasonDispatcherStopped)
		return
	}
	select {
	case d.queue <- n:
		d.mu.RUnlock()
	default:
		d.mu.RUnlock()
		d.fail(ctx, n, ReasonQueueFull)
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
	d.logger.Debug("Notification worker exited", zap.Int("worker", id))
}

func (d *Dispatcher) deliver(n notification.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.SendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, n); err != nil {
		d.fail(ctx, n, err.Error())
		return
	}

	if err := n.MarkSent(); err != nil {
		d.logger.Error("Cannot mark notification sent", zap.String("notification_id", n.ID.String()), zap.Error(err))
		return
	}
	if err := d.repo.Save(context.WithoutCancel(ctx), &n); err != nil {
		d.logger.Error("Failed to persist sent notification",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
		return
	}
	d.metrics.RecordNotification(ctx, string(n.Channel), string(n.Status))
}

func (d *Dispatcher) fail(ctx context.Context, n notification.Notification, reason string) {
	if err := n.MarkFailed(reason); err != nil {
		d.logger.Error("Cannot mark notification failed", zap.String("notification_id", n.ID.String()), zap.Error(err))
		return
	}
	d.logger.Warn("Notification delivery failed",
		zap.String("notification_id", n.ID.String()),
		zap.String("recipient_id", n.RecipientID.String()),
		zap.String("channel", string(n.Channel)),
		zap.String("reason", reason),
	)
	if err := d.repo.Save(context.WithoutCancel(ctx), &n); err != nil {
		d.logger.Error("Failed to persist failed notification",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
	}
	d.metrics.RecordNotification(ctx, string(n.Channel), string(n.Status))
}

// QueryByRecipient returns a recipient's notifications, newest first
func (d *Dispatcher) QueryByRecipient(ctx context.Context, recipientID uuid.UUID) ([]NotificationResponse, error) {
	items, err := d.repo.FindByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return ToNotificationResponses(items), nil
}

// Get retrieves a notification by ID
func (d *Dispatcher) Get(ctx context.Context, notificationID uuid.UUID) (*NotificationResponse, error) {
	n, err := d.repo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	response := ToNotificationResponse(n)
	return &response, nil
}
