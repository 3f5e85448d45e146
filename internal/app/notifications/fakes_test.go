package notifications

import (
	"context"
	"sync"
	"time"

	"notifier/internal/domain"
)

type fakePushClient struct {
	mu        sync.Mutex
	messageID string
	err       error
	panicWith any
	sent      []*domain.PushMessage
}

func (c *fakePushClient) Send(_ context.Context, msg *domain.PushMessage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	if c.panicWith != nil {
		panic(c.panicWith)
	}
	if c.err != nil {
		return "", c.err
	}
	return c.messageID, nil
}

func (c *fakePushClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	records []*domain.DeliveryRecord
	// failTypes makes Create fail for records of the given type.
	failTypes map[domain.NotificationType]error
	getErr    error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{failTypes: map[domain.NotificationType]error{}}
}

func (r *fakeNotificationRepo) Create(_ context.Context, record *domain.DeliveryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failTypes[record.Type]; err != nil {
		return err
	}
	record.Timestamp = time.Date(2024, 5, 1, 12, 0, len(r.records), 0, time.UTC)
	r.records = append(r.records, record)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.DeliveryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) ListByOrderID(_ context.Context, orderID string) ([]*domain.DeliveryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	result := []*domain.DeliveryRecord{}
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].OrderID == orderID {
			result = append(result, r.records[i])
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) all() []*domain.DeliveryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.DeliveryRecord(nil), r.records...)
}

func domainSnapshot(status, token string) domain.OrderSnapshot {
	return domain.OrderSnapshot{ID: "order-1", Status: status, DeviceToken: token}
}
