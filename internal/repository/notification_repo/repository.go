package notification_repo

import (
	"context"

	"notifier/internal/domain"
)

// NotificationRepository is the append-only audit store for delivery records.
// Create fills record.Timestamp with the time assigned by the store.
type NotificationRepository interface {
	Create(ctx context.Context, record *domain.DeliveryRecord) error
	GetByID(ctx context.Context, id string) (*domain.DeliveryRecord, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*domain.DeliveryRecord, error)
}
