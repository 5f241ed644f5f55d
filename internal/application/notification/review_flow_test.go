package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appcatalog "github.com/kasamthapa/krisi/internal/application/catalog"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/infrastructure/event"
	"github.com/kasamthapa/krisi/internal/infrastructure/persistence/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReviewFlow_RejectNotifiesOwnerOnce(t *testing.T) {
	ctx := context.Background()
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)
	d, _ := newTestDispatcher(sender, Config{Workers: 1, QueueSize: 10})
	require.NoError(t, d.Start(ctx))

	bus := event.NewInMemoryEventBus(zap.NewNop())
	for _, h := range Handlers(d, zap.NewNop()) {
		bus.Subscribe(h)
	}
	products := appcatalog.NewProductService(memory.NewProductRepository(), zap.NewNop())
	products.SetEventPublisher(bus)

	owner := shared.Actor{ID: uuid.New(), Role: shared.RoleFarmer}
	qc := shared.Actor{ID: uuid.New(), Role: shared.RoleQualityControl}
	listed, err := products.List(ctx, owner, appcatalog.ListProductRequest{
		Name:         "Mustard greens",
		PricePerUnit: decimal.RequireFromString("1.20"),
		Quantity:     25,
		Unit:         "WEIGHT",
		Category:     "VEGETABLES",
	})
	require.NoError(t, err)

	rejected, err := products.Reject(ctx, qc, listed.ID, "wilted")
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)

	_, err = products.Reject(ctx, qc, listed.ID, "wilted")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidTransition))

	require.NoError(t, d.Stop(ctx))

	assert.Eventually(t, func() bool {
		got, err := d.QueryByRecipient(ctx, owner.ID)
		return err == nil && len(got) == 1 && got[0].Status == "SENT"
	}, time.Second, 10*time.Millisecond)

	got, err := d.QueryByRecipient(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, `Your product "Mustard greens" has been rejected: wilted`, got[0].Message)
	assert.Equal(t, "SYSTEM", got[0].Channel)
	sender.AssertNumberOfCalls(t, "Send", 1)
}
