package push

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"notifier/internal/domain"
	kafka_infra "notifier/internal/infrastructure/kafka"
	"notifier/internal/util"
)

// KafkaClient hands push messages to a gateway that consumes them from a topic.
// The delivery identifier is assigned here, once the broker has acknowledged the write.
type KafkaClient struct {
	producer kafka_infra.Producer
	topic    string
	logger   *zap.Logger
}

type PushRequestEnvelope struct {
	MessageID string              `json:"message_id"`
	Message   *domain.PushMessage `json:"message"`
}

func NewKafkaClient(producer kafka_infra.Producer, topic string, logger *zap.Logger) *KafkaClient {
	return &KafkaClient{producer: producer, topic: topic, logger: logger}
}

func (c *KafkaClient) Send(ctx context.Context, msg *domain.PushMessage) (string, error) {
	envelope := PushRequestEnvelope{
		MessageID: util.GenerateUUID(),
		Message:   msg,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal push request: %w", err)
	}
	if err := c.producer.Produce(ctx, c.topic, payload); err != nil {
		return "", err
	}
	c.logger.Debug("Push request published",
		zap.String("topic", c.topic),
		zap.String("message_id", envelope.MessageID),
		zap.String("device_token", RedactToken(msg.Token)))
	return envelope.MessageID, nil
}
