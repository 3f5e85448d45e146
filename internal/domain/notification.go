package domain

import (
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification record not found")

const StatusUnknown = "unknown"

type NotificationType string

const (
	NotificationTypeOrderUpdate       NotificationType = "order_update"
	NotificationTypeOrderUpdateFailed NotificationType = "order_update_failed"
)

// DeliveryRecord is the audit entry written for every dispatch attempt.
// Title, Body, MessageID and DeviceToken are set only for sent notifications,
// Error only for failed ones.
type DeliveryRecord struct {
	ID          string           `json:"id"`
	OrderID     string           `json:"orderId"`
	Status      string           `json:"status"`
	Title       *string          `json:"title,omitempty"`
	Body        *string          `json:"body,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	Sent        bool             `json:"sent"`
	MessageID   *string          `json:"messageId,omitempty"`
	Error       *string          `json:"error,omitempty"`
	Type        NotificationType `json:"type"`
	DeviceToken *string          `json:"deviceToken,omitempty"`
}
