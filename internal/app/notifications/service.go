package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notifier/internal/domain"
	"notifier/internal/metrics"
	"notifier/internal/repository/notification_repo"
)

type NotificationService interface {
	HandleOrderUpdate(ctx context.Context, event *domain.OrderUpdatedEvent) Result
	GetNotification(ctx context.Context, id string) (*NotificationResponse, error)
	GetNotificationsByOrderID(ctx context.Context, orderID string) ([]*NotificationResponse, error)
}

type notificationService struct {
	dispatcher       *Dispatcher
	recorder         *Recorder
	notificationRepo notification_repo.NotificationRepository
	metrics          *metrics.Metrics
	logger           *zap.Logger
}

func NewNotificationService(
	dispatcher *Dispatcher,
	recorder *Recorder,
	notificationRepo notification_repo.NotificationRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		dispatcher:       dispatcher,
		recorder:         recorder,
		notificationRepo: notificationRepo,
		metrics:          m,
		logger:           logger,
	}
}

// HandleOrderUpdate runs one order update through gate, content, delivery and audit.
// It never panics and never asks its caller to retry: every failure past the gate ends
// in a failure record.
func (s *notificationService) HandleOrderUpdate(ctx context.Context, event *domain.OrderUpdatedEvent) (result Result) {
	defer func() {
		s.metrics.DispatchOutcomes.WithLabelValues(string(result.Outcome)).Inc()
	}()

	if event == nil || event.OrderID == "" {
		s.logger.Warn("Ignoring order update without order id")
		return Result{Outcome: OutcomeInvalid, Err: ErrInvalidEvent}
	}

	// Every event past the gate gets a record, even if ctx ends during the send.
	auditCtx := context.WithoutCancel(ctx)

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Recovered panic while dispatching order notification",
				zap.String("order_id", event.OrderID),
				zap.Any("panic", p))
			result = s.fail(auditCtx, event, fmt.Errorf("unexpected failure: %v", p))
		}
	}()

	if event.After == nil {
		return s.fail(auditCtx, event, domain.ErrMissingAfterSnapshot)
	}
	if event.Before == nil {
		return s.fail(auditCtx, event, domain.ErrMissingBeforeSnapshot)
	}

	if !ShouldDispatch(*event.Before, *event.After) {
		s.logger.Debug("Status did not change, skipping notification",
			zap.String("order_id", event.OrderID),
			zap.String("status", event.After.Status))
		return Result{Outcome: OutcomeGatedOut}
	}

	newStatus := event.After.Status
	orderNumber := domain.HumanOrderNumber(event.OrderID, event.After)

	s.logger.Info("Status changed for order",
		zap.String("order_id", event.OrderID),
		zap.String("old_status", event.Before.Status),
		zap.String("new_status", newStatus))

	deviceToken := event.After.DeviceToken
	if deviceToken == "" {
		s.logger.Info("No device token found for order", zap.String("order_id", event.OrderID))
		return Result{Outcome: OutcomeNoDestination}
	}

	title := Title(newStatus)
	body := Body(newStatus, orderNumber)

	messageID, err := s.dispatcher.Dispatch(ctx, Delivery{
		Token:       deviceToken,
		Title:       title,
		Body:        body,
		OrderID:     event.OrderID,
		Status:      newStatus,
		OrderNumber: orderNumber,
	})
	if err != nil {
		return s.fail(auditCtx, event, err)
	}

	record, err := s.recorder.RecordSuccess(auditCtx, event.OrderID, newStatus, title, body, deviceToken, messageID)
	if err != nil {
		return s.fail(auditCtx, event, err)
	}

	return Result{Outcome: OutcomeRecordedSuccess, MessageID: messageID, RecordID: record.ID}
}

// fail writes the failure record with the best status still known. A failing write is
// logged and swallowed.
func (s *notificationService) fail(ctx context.Context, event *domain.OrderUpdatedEvent, cause error) (result Result) {
	result = Result{Outcome: OutcomeRecordedFailure, Err: cause}

	var deliveryErr *DeliveryError
	if errors.As(cause, &deliveryErr) {
		s.logger.Error("Error sending notification", zap.String("order_id", event.OrderID), zap.Error(cause))
	} else {
		s.logger.Error("Unexpected failure while dispatching notification", zap.String("order_id", event.OrderID), zap.Error(cause))
	}

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Recovered panic while recording failed notification",
				zap.String("order_id", event.OrderID),
				zap.Any("panic", p))
		}
	}()

	record, err := s.recorder.RecordFailure(ctx, event.OrderID, event.StatusOrUnknown(), cause.Error())
	if err != nil {
		s.logger.Error("Failed to store failed notification record",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return result
	}
	result.RecordID = record.ID
	return result
}

func (s *notificationService) GetNotification(ctx context.Context, id string) (*NotificationResponse, error) {
	record, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			s.logger.Debug("Notification record not found", zap.String("notification_id", id))
			return nil, domain.ErrNotificationNotFound
		}
		s.logger.Error("Failed to get notification record from repository", zap.String("notification_id", id), zap.Error(err))
		return nil, errors.New("internal server error")
	}
	return mapRecordToResponse(record), nil
}

func (s *notificationService) GetNotificationsByOrderID(ctx context.Context, orderID string) ([]*NotificationResponse, error) {
	records, err := s.notificationRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Error("Failed to list notification records from repository", zap.String("order_id", orderID), zap.Error(err))
		return nil, errors.New("internal server error")
	}
	responses := make([]*NotificationResponse, len(records))
	for i, record := range records {
		responses[i] = mapRecordToResponse(record)
	}
	return responses, nil
}

func mapRecordToResponse(record *domain.DeliveryRecord) *NotificationResponse {
	return &NotificationResponse{
		ID:          record.ID,
		OrderID:     record.OrderID,
		Status:      record.Status,
		Title:       record.Title,
		Body:        record.Body,
		Timestamp:   record.Timestamp.UTC().Format(time.RFC3339Nano),
		Sent:        record.Sent,
		MessageID:   record.MessageID,
		Error:       record.Error,
		Type:        string(record.Type),
		DeviceToken: record.DeviceToken,
	}
}
