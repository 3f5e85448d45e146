package notifications

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"notifier/internal/app/notifications"
	"notifier/internal/metrics"
	"notifier/internal/repository/inbox_repo"
)

// RegisterRoutes mounts the trigger and audit read endpoints. readTimeout bounds the read
// endpoints only; the trigger runs without a deadline.
func RegisterRoutes(r chi.Router, s notifications.NotificationService, inbox inbox_repo.InboxRepository, m *metrics.Metrics, readTimeout time.Duration, l *zap.Logger) {
	handler := NewNotificationHandler(s, inbox, m, l.With(zap.String("component", "NotificationHTTPHandler")))

	r.Post("/events/order-updated", handler.OrderUpdated)

	r.Route("/notifications", func(r chi.Router) {
		if readTimeout > 0 {
			r.Use(middleware.Timeout(readTimeout))
		}
		r.Get("/", handler.ListNotifications)
		r.Get("/{notificationID}", handler.GetNotification)
	})
}
