package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"notifier/internal/app/notifications"
	"notifier/internal/domain"
	kafka_infra "notifier/internal/infrastructure/kafka"
	"notifier/internal/metrics"
	"notifier/internal/repository/inbox_repo"
	"notifier/internal/util"
)

func inboxKey(msg kafka.Message, groupID string) string {
	return fmt.Sprintf("%s/%d/%d/%s", msg.Topic, msg.Partition, msg.Offset, groupID)
}

// OrderUpdatedMessageHandler feeds order update events into the notification service.
// It always returns nil so the offset is committed: dispatch failures are terminal and
// already audited, and a redelivery would only send the push twice.
func OrderUpdatedMessageHandler(
	notificationService notifications.NotificationService,
	inboxRepo inbox_repo.InboxRepository,
	groupID string,
	m *metrics.Metrics,
	logger *zap.Logger,
) kafka_infra.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		logger.Debug("Received Kafka message for order update",
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.String("key", string(msg.Key)),
		)

		var event domain.OrderUpdatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("Failed to unmarshal Kafka message value to OrderUpdatedEvent",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			return nil
		}

		claimed, err := inboxRepo.Claim(ctx, &domain.InboxMessage{
			ID:         util.GenerateUUID(),
			Key:        inboxKey(msg, groupID),
			Source:     domain.InboxSourceKafka,
			ReceivedAt: time.Now().UTC(),
		})
		switch {
		case err != nil:
			logger.Warn("Inbox unavailable, handling order update without redelivery guard",
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		case !claimed:
			m.DuplicateTriggers.WithLabelValues(domain.InboxSourceKafka).Inc()
			logger.Info("Skipping redelivered order update",
				zap.String("order_id", event.OrderID),
				zap.Int64("offset", msg.Offset))
			return nil
		}

		result := notificationService.HandleOrderUpdate(ctx, &event)
		fields := []zap.Field{
			zap.String("order_id", event.OrderID),
			zap.String("outcome", string(result.Outcome)),
		}
		if result.Err != nil {
			logger.Warn("Order update handled with failure", append(fields, zap.Error(result.Err))...)
			return nil
		}
		logger.Info("Order update handled", fields...)
		return nil
	}
}
