package notifications

import (
	"context"
	"time"

	"go.uber.org/zap"

	"notifier/internal/domain"
	"notifier/internal/infrastructure/push"
	"notifier/internal/metrics"
)

const (
	androidIcon    = "ic_launcher"
	androidColor   = "#DC143C"
	androidChannel = "order_updates"
	androidPrio    = "high"
	defaultSound   = "default"
	apnsBadge      = 1
)

// DeliveryError means the push client rejected or failed to send the message.
// Its text is the client's error message unchanged.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return e.Err.Error() }
func (e *DeliveryError) Unwrap() error { return e.Err }

type Delivery struct {
	Token       string
	Title       string
	Body        string
	OrderID     string
	Status      string
	OrderNumber string
}

type Dispatcher struct {
	client  push.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewDispatcher(client push.Client, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{client: client, metrics: m, logger: logger}
}

func BuildPushMessage(d Delivery) *domain.PushMessage {
	notification := domain.PushNotification{Title: d.Title, Body: d.Body}
	return &domain.PushMessage{
		Token:        d.Token,
		Notification: notification,
		Data: map[string]string{
			"orderId":     d.OrderID,
			"status":      d.Status,
			"type":        string(domain.NotificationTypeOrderUpdate),
			"orderNumber": d.OrderNumber,
		},
		Android: domain.AndroidConfig{
			Notification: domain.AndroidNotification{
				Icon:      androidIcon,
				Color:     androidColor,
				Sound:     defaultSound,
				ChannelID: androidChannel,
				Priority:  androidPrio,
			},
		},
		APNS: domain.APNSConfig{
			Payload: domain.APNSPayload{
				Aps: domain.Aps{
					Alert: notification,
					Sound: defaultSound,
					Badge: apnsBadge,
				},
			},
		},
	}
}

// Dispatch sends exactly one message through the push client. It does not retry.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery Delivery) (string, error) {
	msg := BuildPushMessage(delivery)

	start := time.Now()
	messageID, err := d.client.Send(ctx, msg)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		d.metrics.PushSendDuration.WithLabelValues("error").Observe(elapsed)
		return "", &DeliveryError{Err: err}
	}
	d.metrics.PushSendDuration.WithLabelValues("success").Observe(elapsed)

	d.logger.Info("Notification sent successfully",
		zap.String("order_id", delivery.OrderID),
		zap.String("message_id", messageID))
	return messageID, nil
}
