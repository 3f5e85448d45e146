package push

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProducer struct {
	topic   string
	payload []byte
	err     error
}

func (p *fakeProducer) Produce(_ context.Context, topic string, message []byte) error {
	p.topic = topic
	p.payload = message
	return p.err
}

func (p *fakeProducer) Close() error { return nil }

func TestKafkaClient_Send(t *testing.T) {
	producer := &fakeProducer{}
	client := NewKafkaClient(producer, "push_requests", zap.NewNop())

	id, err := client.Send(context.Background(), testPushMessage())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "push_requests", producer.topic)

	var envelope PushRequestEnvelope
	require.NoError(t, json.Unmarshal(producer.payload, &envelope))
	assert.Equal(t, id, envelope.MessageID)
	assert.Equal(t, "Order Confirmed!", envelope.Message.Notification.Title)
}

func TestKafkaClient_Send_ProducerError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("leader not available")}
	client := NewKafkaClient(producer, "push_requests", zap.NewNop())

	id, err := client.Send(context.Background(), testPushMessage())
	require.Error(t, err)
	assert.Empty(t, id)
}
