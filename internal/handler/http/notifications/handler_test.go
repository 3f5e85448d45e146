package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notifier/internal/app/notifications"
	"notifier/internal/domain"
	"notifier/internal/metrics"
)

type fakeService struct {
	result  notifications.Result
	handled []*domain.OrderUpdatedEvent
	records map[string]*notifications.NotificationResponse
	byOrder map[string][]*notifications.NotificationResponse
	getErr  error
	listErr error

	triggerHadDeadline bool
}

func (s *fakeService) HandleOrderUpdate(ctx context.Context, event *domain.OrderUpdatedEvent) notifications.Result {
	s.handled = append(s.handled, event)
	_, s.triggerHadDeadline = ctx.Deadline()
	return s.result
}

func (s *fakeService) GetNotification(_ context.Context, id string) (*notifications.NotificationResponse, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if rec, ok := s.records[id]; ok {
		return rec, nil
	}
	return nil, domain.ErrNotificationNotFound
}

func (s *fakeService) GetNotificationsByOrderID(_ context.Context, orderID string) ([]*notifications.NotificationResponse, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	res := s.byOrder[orderID]
	if res == nil {
		res = []*notifications.NotificationResponse{}
	}
	return res, nil
}

type fakeInbox struct {
	seen map[string]bool
	err  error
}

func (i *fakeInbox) Claim(_ context.Context, msg *domain.InboxMessage) (bool, error) {
	if i.err != nil {
		return false, i.err
	}
	if i.seen[msg.Key] {
		return false, nil
	}
	i.seen[msg.Key] = true
	return true, nil
}

func newTestRouter(svc *fakeService, inbox *fakeInbox, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, inbox, m, time.Second, zap.NewNop())
	return r
}

const validEvent = `{"order_id":"order-1","before":{"id":"order-1","status":"pending"},"after":{"id":"order-1","status":"confirmed","device_token":"tok"}}`

func TestOrderUpdated(t *testing.T) {
	t.Run("accepted with outcome", func(t *testing.T) {
		svc := &fakeService{result: notifications.Result{Outcome: notifications.OutcomeRecordedSuccess, MessageID: "msg-1", RecordID: "rec-1"}}
		router := newTestRouter(svc, &fakeInbox{seen: map[string]bool{}}, metrics.New())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/order-updated", strings.NewReader(validEvent)))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "recorded_success", body["outcome"])
		assert.Equal(t, "msg-1", body["message_id"])
		require.Len(t, svc.handled, 1)
		assert.Equal(t, "confirmed", svc.handled[0].After.Status)
		assert.Equal(t, "tok", svc.handled[0].After.DeviceToken)
	})

	t.Run("failure is still accepted", func(t *testing.T) {
		svc := &fakeService{result: notifications.Result{Outcome: notifications.OutcomeRecordedFailure, Err: errors.New("token expired")}}
		router := newTestRouter(svc, &fakeInbox{seen: map[string]bool{}}, metrics.New())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/order-updated", strings.NewReader(validEvent)))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"token expired"`)
	})

	t.Run("bad requests", func(t *testing.T) {
		for name, body := range map[string]string{
			"malformed json":   "{",
			"missing order id": `{"before":{"status":"a"},"after":{"status":"b"}}`,
		} {
			t.Run(name, func(t *testing.T) {
				svc := &fakeService{}
				router := newTestRouter(svc, &fakeInbox{seen: map[string]bool{}}, metrics.New())

				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/order-updated", strings.NewReader(body)))

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Empty(t, svc.handled)
			})
		}
	})

	t.Run("idempotency key deduplicates", func(t *testing.T) {
		svc := &fakeService{result: notifications.Result{Outcome: notifications.OutcomeRecordedSuccess}}
		m := metrics.New()
		router := newTestRouter(svc, &fakeInbox{seen: map[string]bool{}}, m)

		send := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/events/order-updated", strings.NewReader(validEvent))
			req.Header.Set("Idempotency-Key", "evt-1")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		assert.Equal(t, http.StatusAccepted, send().Code)
		second := send()
		assert.Equal(t, http.StatusOK, second.Code)
		assert.Contains(t, second.Body.String(), `"outcome":"duplicate"`)
		assert.Len(t, svc.handled, 1)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.DuplicateTriggers.WithLabelValues("http")))
	})

	t.Run("inbox failure falls through to dispatch", func(t *testing.T) {
		svc := &fakeService{result: notifications.Result{Outcome: notifications.OutcomeGatedOut}}
		router := newTestRouter(svc, &fakeInbox{err: errors.New("db down")}, metrics.New())

		req := httptest.NewRequest(http.MethodPost, "/events/order-updated", strings.NewReader(validEvent))
		req.Header.Set("Idempotency-Key", "evt-2")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Len(t, svc.handled, 1)
	})
}

func TestOrderUpdated_RunsWithoutReadTimeout(t *testing.T) {
	svc := &fakeService{result: notifications.Result{Outcome: notifications.OutcomeRecordedSuccess}}
	router := newTestRouter(svc, &fakeInbox{seen: map[string]bool{}}, metrics.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/order-updated", strings.NewReader(validEvent)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.False(t, svc.triggerHadDeadline)
}

func TestGetNotification(t *testing.T) {
	title := "Order Ready for Collection!"
	svc := &fakeService{records: map[string]*notifications.NotificationResponse{
		"rec-1": {ID: "rec-1", OrderID: "order-1", Status: "ready", Title: &title, Sent: true, Type: "order_update"},
	}}
	router := newTestRouter(svc, &fakeInbox{seen: map[string]bool{}}, metrics.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/rec-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got notifications.NotificationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "ready", got.Status)
	assert.Equal(t, title, *got.Title)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.getErr = errors.New("internal server error")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/rec-1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListNotifications(t *testing.T) {
	svc := &fakeService{byOrder: map[string][]*notifications.NotificationResponse{
		"order-1": {{ID: "rec-2"}, {ID: "rec-1"}},
	}}
	router := newTestRouter(svc, &fakeInbox{seen: map[string]bool{}}, metrics.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?order_id=order-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []notifications.NotificationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "rec-2", got[0].ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?order_id=none", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.listErr = errors.New("boom")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?order_id=order-1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func (i *fakeInbox) DeleteReceivedBefore(context.Context, time.Time) (int64, error) { return 0, nil }
