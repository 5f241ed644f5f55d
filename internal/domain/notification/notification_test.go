package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		recipient := uuid.New()
		n, err := NewNotification(recipient, ChannelSystem, "Your product was approved")
		require.NoError(t, err)
		assert.Equal(t, recipient, n.RecipientID)
		assert.Equal(t, StatusPending, n.Status)
		assert.Nil(t, n.SentAt)
		assert.Nil(t, n.ResendOf)
	})

	tests := []struct {
		name      string
		recipient uuid.UUID
		channel   Channel
		message   string
	}{
		{"missing recipient", uuid.Nil, ChannelSMS, "hi"},
		{"unknown channel", uuid.New(), Channel("FAX"), "hi"},
		{"blank message", uuid.New(), ChannelEmail, " "},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewNotification(tt.recipient, tt.channel, tt.message)
			assert.True(t, shared.IsCode(err, shared.CodeValidation))
		})
	}
}

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel("email")
	require.NoError(t, err)
	assert.Equal(t, ChannelEmail, c)
	_, err = ParseChannel("pigeon")
	assert.Error(t, err)
}

func TestNotification_Delivery(t *testing.T) {
	t.Run("pending to sent", func(t *testing.T) {
		n, _ := NewNotification(uuid.New(), ChannelSMS, "hi")
		require.NoError(t, n.MarkSent())
		assert.Equal(t, StatusSent, n.Status)
		assert.NotNil(t, n.SentAt)
		assert.Error(t, n.MarkFailed("late"))
	})

	t.Run("failed is terminal", func(t *testing.T) {
		n, _ := NewNotification(uuid.New(), ChannelSMS, "hi")
		require.NoError(t, n.MarkFailed("gateway down"))
		assert.Equal(t, StatusFailed, n.Status)
		assert.Equal(t, "gateway down", n.FailureReason)
		assert.True(t, shared.IsCode(n.MarkSent(), shared.CodeInvalidTransition))
	})
}

func TestNotification_NewResend(t *testing.T) {
	t.Run("copies a failed notification", func(t *testing.T) {
		n, _ := NewNotification(uuid.New(), ChannelEmail, "Order delivered")
		require.NoError(t, n.MarkFailed("bounced"))

		resend, err := n.NewResend()
		require.NoError(t, err)
		assert.NotEqual(t, n.ID, resend.ID)
		assert.Equal(t, StatusPending, resend.Status)
		assert.Equal(t, n.Message, resend.Message)
		require.NotNil(t, resend.ResendOf)
		assert.Equal(t, n.ID, *resend.ResendOf)
		assert.Equal(t, StatusFailed, n.Status)
	})

	t.Run("only failed notifications", func(t *testing.T) {
		n, _ := NewNotification(uuid.New(), ChannelEmail, "hi")
		_, err := n.NewResend()
		assert.True(t, shared.IsCode(err, shared.CodeInvalidTransition))
	})
}
