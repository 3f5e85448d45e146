package notifications

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"notifier/internal/app/notifications"
	"notifier/internal/domain"
	"notifier/internal/metrics"
	"notifier/internal/repository/inbox_repo"
	"notifier/internal/util"
)

const idempotencyKeyHeader = "Idempotency-Key"

type orderUpdatedResponse struct {
	Outcome   notifications.Outcome `json:"outcome"`
	MessageID string                `json:"message_id,omitempty"`
	RecordID  string                `json:"record_id,omitempty"`
	Error     string                `json:"error,omitempty"`
}

func newOrderUpdatedResponse(result notifications.Result) orderUpdatedResponse {
	res := orderUpdatedResponse{Outcome: result.Outcome, MessageID: result.MessageID, RecordID: result.RecordID}
	if result.Err != nil {
		res.Error = result.Err.Error()
	}
	return res
}

type NotificationHandler struct {
	service   notifications.NotificationService
	inboxRepo inbox_repo.InboxRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewNotificationHandler(s notifications.NotificationService, inbox inbox_repo.InboxRepository, m *metrics.Metrics, l *zap.Logger) *NotificationHandler {
	return &NotificationHandler{service: s, inboxRepo: inbox, metrics: m, logger: l}
}

// OrderUpdated accepts an order update over HTTP. Any decoded event is answered with
// 202: the dispatch outcome is final and the caller must not retry it.
func (h *NotificationHandler) OrderUpdated(w http.ResponseWriter, r *http.Request) {
	var event domain.OrderUpdatedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.Warn("Invalid request body for OrderUpdated", zap.Error(err))
		renderJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if event.OrderID == "" {
		h.logger.Warn("Order ID is missing in OrderUpdated request")
		renderJSONError(w, "order_id is required", http.StatusBadRequest)
		return
	}

	if key := r.Header.Get(idempotencyKeyHeader); key != "" {
		claimed, err := h.inboxRepo.Claim(r.Context(), &domain.InboxMessage{
			ID:         util.GenerateUUID(),
			Key:        key,
			Source:     domain.InboxSourceHTTP,
			ReceivedAt: time.Now().UTC(),
		})
		if err != nil {
			h.logger.Warn("Inbox unavailable, handling order update without idempotency check",
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		} else if !claimed {
			h.metrics.DuplicateTriggers.WithLabelValues(domain.InboxSourceHTTP).Inc()
			h.logger.Info("Skipping duplicate order update", zap.String("order_id", event.OrderID))
			renderJSON(w, http.StatusOK, orderUpdatedResponse{Outcome: notifications.OutcomeDuplicate})
			return
		}
	}

	result := h.service.HandleOrderUpdate(r.Context(), &event)
	renderJSON(w, http.StatusAccepted, newOrderUpdatedResponse(result))
}

func (h *NotificationHandler) GetNotification(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "notificationID")

	res, err := h.service.GetNotification(r.Context(), notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			h.logger.Info("Notification not found", zap.String("notification_id", notificationID))
			renderJSONError(w, "Notification not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Error getting notification", zap.String("notification_id", notificationID), zap.Error(err))
		renderJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	renderJSON(w, http.StatusOK, res)
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		h.logger.Warn("Order ID is missing in ListNotifications request")
		renderJSONError(w, "order_id query parameter is required", http.StatusBadRequest)
		return
	}

	res, err := h.service.GetNotificationsByOrderID(r.Context(), orderID)
	if err != nil {
		h.logger.Error("Error listing notifications for order", zap.String("order_id", orderID), zap.Error(err))
		renderJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	renderJSON(w, http.StatusOK, res)
}

func renderJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func renderJSONError(w http.ResponseWriter, message string, statusCode int) {
	renderJSON(w, statusCode, map[string]any{"error": message, "code": statusCode})
}
