package messaging

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newNotification(t *testing.T) notification.Notification {
	t.Helper()
	n, err := notification.NewNotification(uuid.New(), notification.ChannelSMS, "Order delivered")
	require.NoError(t, err)
	return *n
}

func TestLogSender_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(LogSenderConfig{}, zap.New(core))
	n := newNotification(t)

	require.NoError(t, sender.Send(context.Background(), n))

	entries := logs.FilterMessage("Notification delivered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, n.ID.String(), fields["notification_id"])
	assert.Equal(t, "SMS", fields["channel"])
}

func TestLogSender_FailureRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		roll    float64
		wantErr bool
	}{
		{"never fails at zero", 0, 0, false},
		{"fails below rate", 0.3, 0.1, true},
		{"passes above rate", 0.3, 0.5, false},
		{"rate is clamped", 5, 0.99, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roll := tt.roll
			sender := NewLogSender(LogSenderConfig{FailureRate: tt.rate}, zap.NewNop()).
				WithRandom(func() float64 { return roll })

			err := sender.Send(context.Background(), newNotification(t))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSimulatedFailure)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewLogSender(LogSenderConfig{}, nil).Send(ctx, newNotification(t))
	assert.ErrorIs(t, err, context.Canceled)
}
