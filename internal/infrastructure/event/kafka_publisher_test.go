package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockMessageWriter is a mock implementation of MessageWriter
type MockMessageWriter struct {
	mock.Mock
}

func (m *MockMessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := NewKafkaPublisherWithWriter(writer, "krisi.domain-events", zap.NewNop())
	first := newTestEvent("OrderPlaced")
	second := newTestEvent("OrderDelivered")

	var written []kafka.Message
	writer.On("WriteMessages", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(1).([]kafka.Message)
	}).Return(nil)

	require.NoError(t, publisher.Publish(context.Background(), first, second))
	require.Len(t, written, 2)

	msg := written[0]
	assert.Equal(t, first.AggregateID().String(), string(msg.Key))
	assert.Equal(t, []kafka.Header{
		{Key: HeaderEventType, Value: []byte("OrderPlaced")},
		{Key: HeaderAggregateType, Value: []byte("Order")},
	}, msg.Headers)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.Equal(t, first.EventID().String(), envelope.EventID)
	assert.Equal(t, "OrderPlaced", envelope.EventType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "hello", payload["note"])
}

func TestKafkaPublisher_NoEventsNoWrite(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := NewKafkaPublisherWithWriter(writer, "t", nil)

	require.NoError(t, publisher.Publish(context.Background()))
	writer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := new(MockMessageWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))
	writer.On("Close").Return(nil)
	publisher := NewKafkaPublisherWithWriter(writer, "t", zap.NewNop())

	err := publisher.Publish(context.Background(), newTestEvent("OrderPlaced"))
	assert.ErrorContains(t, err, "leader not available")
	assert.NoError(t, publisher.Close())
}

// stubPublisher returns a fixed error and counts calls
type stubPublisher struct {
	err   error
	calls int
}

func (p *stubPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.calls++
	return p.err
}

func TestMultiPublisher(t *testing.T) {
	ok := &stubPublisher{}
	broken := &stubPublisher{err: errors.New("kafka down")}
	last := &stubPublisher{}

	m := NewMultiPublisher(ok, nil, broken, last)
	err := m.Publish(context.Background(), newTestEvent("OrderPlaced"))

	assert.ErrorContains(t, err, "kafka down")
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, last.calls, "later publishers still run")

	assert.NoError(t, NewMultiPublisher(ok).Publish(context.Background()))
}
