// Package messaging provides notification senders. No real SMS or email
// gateway is integrated; LogSender records deliveries to the application log.
package messaging

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/kasamthapa/krisi/internal/domain/notification"
	"go.uber.org/zap"
)

// ErrSimulatedFailure is returned when LogSender drops a delivery on purpose
var ErrSimulatedFailure = errors.New("simulated delivery failure")

// LogSenderConfig configures a LogSender
type LogSenderConfig struct {
	// FailureRate is the probability in [0,1] that a delivery fails
	FailureRate float64
}

// LogSender writes notifications to the logger instead of a gateway
type LogSender struct {
	config LogSenderConfig
	logger *zap.Logger

	mu   sync.Mutex
	roll func() float64
}

// NewLogSender creates a LogSender
func NewLogSender(cfg LogSenderConfig, logger *zap.Logger) *LogSender {
	if cfg.FailureRate < 0 {
		cfg.FailureRate = 0
	}
	if cfg.FailureRate > 1 {
		cfg.FailureRate = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{
		config: cfg,
		logger: logger.Named("sender"),
		roll:   rand.Float64,
	}
}

// WithRandom replaces the random source, for deterministic tests
func (s *LogSender) WithRandom(roll func() float64) *LogSender {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roll = roll
	return s
}

// Send logs the notification, failing with the configured probability
func (s *LogSender) Send(ctx context.Context, n notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.config.FailureRate > 0 {
		s.mu.Lock()
		r := s.roll()
		s.mu.Unlock()
		if r < s.config.FailureRate {
			return ErrSimulatedFailure
		}
	}

	s.logger.Info("Notification delivered",
		zap.String("notification_id", n.ID.String()),
		zap.String("recipient_id", n.RecipientID.String()),
		zap.String("channel", n.Channel.String()),
		zap.String("message", n.Message),
	)
	return nil
}
