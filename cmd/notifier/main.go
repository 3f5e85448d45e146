package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"notifier/internal/app/notifications"
	"notifier/internal/config"
	kafka_handler "notifier/internal/handler/kafka"
	"notifier/internal/inbox"
	"notifier/internal/infrastructure/database"
	kafka_infra "notifier/internal/infrastructure/kafka"
	"notifier/internal/infrastructure/push"
	"notifier/internal/metrics"
	postgres_inbox_repo "notifier/internal/repository/inbox_repo/postgres"
	postgres_notification_repo "notifier/internal/repository/notification_repo/postgres"
	"notifier/internal/router"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()
	appLogger.Info("Notifier Service starting...")

	appLogger.Info("Waiting for database to be available...")
	dbConfig := database.DBConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.Name,
		SSLMode:  cfg.DBConfig.SSLMode,
	}

	var db *sql.DB
	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = database.NewPostgresDB(dbConfig)
		if err == nil {
			appLogger.Info("Successfully connected to PostgreSQL database!")
			break
		}
		appLogger.Warn("Failed to connect to database, retrying",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_in", retryDelay),
			zap.Error(err))
		time.Sleep(retryDelay)
	}
	if db == nil {
		appLogger.Fatal("Could not connect to database after multiple retries. Exiting.", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", zap.Error(err))
		} else {
			appLogger.Info("Database connection closed.")
		}
	}()

	appLogger.Info("Running database migrations...", zap.String("source", cfg.MigrationsPath))
	m, err := migrate.New(cfg.MigrationsPath, cfg.GetDBMigrationConnectionString())
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed successfully (or no new migrations).")

	kafkaBrokers := cfg.GetKafkaBrokers()
	requiredTopics := []string{cfg.KafkaOrderUpdatesTopic}
	if cfg.PushTransport == config.PushTransportKafka {
		requiredTopics = append(requiredTopics, cfg.KafkaPushTopic)
	}
	topicsCtx, cancelTopics := context.WithTimeout(context.Background(), 30*time.Second)
	if err := kafka_infra.EnsureTopics(topicsCtx, kafkaBrokers, requiredTopics, cfg.KafkaConsumerWorkers, appLogger); err != nil {
		appLogger.Fatal("Failed to ensure Kafka topics", zap.Error(err))
	}
	cancelTopics()

	appMetrics := metrics.New()

	var pushClient push.Client
	switch cfg.PushTransport {
	case config.PushTransportKafka:
		producer := kafka_infra.NewProducer(kafkaBrokers, appLogger.With(zap.String("component", "PushProducer")))
		defer producer.Close()
		pushClient = push.NewKafkaClient(producer, cfg.KafkaPushTopic, appLogger.With(zap.String("component", "KafkaPushClient")))
	default:
		httpClient, err := push.NewHTTPClient(push.HTTPClientConfig{
			Endpoint:  cfg.PushEndpoint,
			AuthToken: cfg.PushAuthToken,
			Timeout:   cfg.PushRequestTimeout,
		}, appLogger.With(zap.String("component", "HTTPPushClient")))
		if err != nil {
			appLogger.Fatal("Failed to create push client", zap.Error(err))
		}
		pushClient = httpClient
	}
	appLogger.Info("Push client configured", zap.String("transport", cfg.PushTransport))

	notificationRepository := postgres_notification_repo.NewNotificationRepository(db, appLogger)
	inboxRepository := postgres_inbox_repo.NewInboxRepository(db, appLogger)

	serviceLogger := appLogger.With(zap.String("component", "NotificationService"))
	notificationService := notifications.NewNotificationService(
		notifications.NewDispatcher(pushClient, appMetrics, serviceLogger),
		notifications.NewRecorder(notificationRepository, appMetrics, serviceLogger),
		notificationRepository,
		appMetrics,
		serviceLogger,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	inboxPruner := inbox.NewPruner(
		inboxRepository,
		cfg.InboxRetention,
		cfg.InboxPruneInterval,
		30*time.Second,
		appLogger.With(zap.String("component", "InboxPruner")),
	)
	inboxPruner.Start(ctx)

	consumer := kafka_infra.NewConsumer(
		kafkaBrokers,
		cfg.KafkaOrderUpdatesTopic,
		cfg.KafkaConsumerGroup,
		cfg.KafkaConsumerWorkers,
		kafka_handler.OrderUpdatedMessageHandler(
			notificationService,
			inboxRepository,
			cfg.KafkaConsumerGroup,
			appMetrics,
			appLogger.With(zap.String("component", "OrderUpdatedConsumer")),
		),
		appLogger.With(zap.String("component", "KafkaConsumer")),
	)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Consume(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Kafka order update consumer stopped", zap.Error(err))
		}
	}()
	appLogger.Info("Kafka order update consumer started!")

	handler := router.NewRouter(router.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		ReadTimeout:    30 * time.Second,
	}, notificationService, inboxRepository, appMetrics, appLogger)

	serverAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	appLogger.Info("Notifier Service started", zap.String("address", serverAddr))

	<-sigChan

	appLogger.Info("Shutting down Notifier Service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Notifier Service graceful shutdown failed", zap.Error(err))
	}

	stop()
	<-consumerDone
	inboxPruner.Wait()
	if err := consumer.Close(); err != nil {
		appLogger.Error("Error closing Kafka consumer", zap.Error(err))
	}
	appLogger.Info("Notifier Service stopped.")
}
