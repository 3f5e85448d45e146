package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"notifier/internal/app/notifications"
	http_notifications "notifier/internal/handler/http/notifications"
	"notifier/internal/metrics"
	"notifier/internal/repository/inbox_repo"
)

type Options struct {
	AllowedOrigins []string
	// ReadTimeout applies to the audit read endpoints only.
	ReadTimeout time.Duration
}

func NewRouter(
	opts Options,
	service notifications.NotificationService,
	inbox inbox_repo.InboxRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	http_notifications.RegisterRoutes(r, service, inbox, m, opts.ReadTimeout, logger)

	return r
}
