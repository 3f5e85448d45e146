package notifications

import (
	"context"

	"go.uber.org/zap"

	"notifier/internal/domain"
	"notifier/internal/infrastructure/push"
	"notifier/internal/metrics"
	"notifier/internal/repository/notification_repo"
	"notifier/internal/util"
)

// Recorder appends one DeliveryRecord per dispatch attempt.
type Recorder struct {
	repo    notification_repo.NotificationRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRecorder(repo notification_repo.NotificationRepository, m *metrics.Metrics, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, metrics: m, logger: logger}
}

// RecordSuccess stores the sent notification. Only the redacted device token is persisted.
func (r *Recorder) RecordSuccess(ctx context.Context, orderID, status, title, body, deviceToken, messageID string) (*domain.DeliveryRecord, error) {
	redacted := push.RedactToken(deviceToken)
	record := &domain.DeliveryRecord{
		ID:          util.GenerateUUID(),
		OrderID:     orderID,
		Status:      status,
		Title:       &title,
		Body:        &body,
		Sent:        true,
		MessageID:   &messageID,
		Type:        domain.NotificationTypeOrderUpdate,
		DeviceToken: &redacted,
	}
	return record, r.create(ctx, record)
}

func (r *Recorder) RecordFailure(ctx context.Context, orderID, status, errMsg string) (*domain.DeliveryRecord, error) {
	record := &domain.DeliveryRecord{
		ID:      util.GenerateUUID(),
		OrderID: orderID,
		Status:  status,
		Sent:    false,
		Error:   &errMsg,
		Type:    domain.NotificationTypeOrderUpdateFailed,
	}
	return record, r.create(ctx, record)
}

func (r *Recorder) create(ctx context.Context, record *domain.DeliveryRecord) error {
	if err := r.repo.Create(ctx, record); err != nil {
		r.metrics.AuditWriteFailures.WithLabelValues(string(record.Type)).Inc()
		return err
	}
	r.logger.Info("Notification record created",
		zap.String("order_id", record.OrderID),
		zap.String("notification_id", record.ID),
		zap.Bool("sent", record.Sent))
	return nil
}
