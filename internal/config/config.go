package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	PushTransportHTTP  = "http"
	PushTransportKafka = "kafka"
)

type Config struct {
	HTTPPort           int      `env:"NOTIFIER_HTTP_PORT"`
	CORSAllowedOrigins []string `env:"NOTIFIER_CORS_ALLOWED_ORIGINS"`

	DBConfig struct {
		Host     string `env:"NOTIFIER_DB_HOST"`
		Port     int    `env:"NOTIFIER_DB_PORT"`
		User     string `env:"NOTIFIER_DB_USER"`
		Password string `env:"NOTIFIER_DB_PASSWORD"`
		Name     string `env:"NOTIFIER_DB_NAME"`
		SSLMode  string `env:"NOTIFIER_DB_SSLMODE"`
	}
	MigrationsPath string `env:"NOTIFIER_MIGRATIONS_PATH"`

	InboxRetention     time.Duration `env:"INBOX_RETENTION"`
	InboxPruneInterval time.Duration `env:"INBOX_PRUNE_INTERVAL"`

	KafkaBrokerURL         string `env:"KAFKA_BROKER_URL"`
	KafkaOrderUpdatesTopic string `env:"KAFKA_ORDER_UPDATES_TOPIC"`
	KafkaConsumerGroup     string `env:"KAFKA_CONSUMER_GROUP"`
	KafkaConsumerWorkers   int    `env:"KAFKA_CONSUMER_WORKERS"`

	PushTransport      string        `env:"PUSH_TRANSPORT"`
	PushEndpoint       string        `env:"PUSH_ENDPOINT"`
	PushAuthToken      string        `env:"PUSH_AUTH_TOKEN"`
	PushRequestTimeout time.Duration `env:"PUSH_REQUEST_TIMEOUT"`
	KafkaPushTopic     string        `env:"KAFKA_PUSH_TOPIC"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsInt("NOTIFIER_HTTP_PORT", 8083)
	cfg.CORSAllowedOrigins = splitList(getEnvOrDefault("NOTIFIER_CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	cfg.DBConfig.Host = getEnvOrDefault("NOTIFIER_DB_HOST", "localhost")
	cfg.DBConfig.Port = getEnvAsInt("NOTIFIER_DB_PORT", 5432)
	cfg.DBConfig.User = getEnvOrDefault("NOTIFIER_DB_USER", "postgres")
	cfg.DBConfig.Password = getEnvOrDefault("NOTIFIER_DB_PASSWORD", "postgres")
	cfg.DBConfig.Name = getEnvOrDefault("NOTIFIER_DB_NAME", "notifications_db")
	cfg.DBConfig.SSLMode = getEnvOrDefault("NOTIFIER_DB_SSLMODE", "disable")
	cfg.MigrationsPath = getEnvOrDefault("NOTIFIER_MIGRATIONS_PATH", "file:///app/migrations")

	cfg.InboxRetention = getEnvAsDuration("INBOX_RETENTION", 7*24*time.Hour)
	cfg.InboxPruneInterval = getEnvAsDuration("INBOX_PRUNE_INTERVAL", time.Hour)

	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaOrderUpdatesTopic = getEnvOrDefault("KAFKA_ORDER_UPDATES_TOPIC", "order_status_updates")
	cfg.KafkaConsumerGroup = getEnvOrDefault("KAFKA_CONSUMER_GROUP", "notifier-service-group")
	cfg.KafkaConsumerWorkers = getEnvAsInt("KAFKA_CONSUMER_WORKERS", 4)

	cfg.PushTransport = strings.ToLower(getEnvOrDefault("PUSH_TRANSPORT", PushTransportHTTP))
	cfg.PushEndpoint = getEnvOrDefault("PUSH_ENDPOINT", "http://localhost:8090/v1/messages:send")
	cfg.PushAuthToken = getEnvOrDefault("PUSH_AUTH_TOKEN", "")
	cfg.PushRequestTimeout = getEnvAsDuration("PUSH_REQUEST_TIMEOUT", 0)
	cfg.KafkaPushTopic = getEnvOrDefault("KAFKA_PUSH_TOPIC", "push_requests")

	switch cfg.PushTransport {
	case PushTransportHTTP, PushTransportKafka:
	default:
		return nil, fmt.Errorf("invalid PUSH_TRANSPORT %q: must be %q or %q", cfg.PushTransport, PushTransportHTTP, PushTransportKafka)
	}
	if cfg.InboxPruneInterval <= 0 {
		return nil, fmt.Errorf("invalid INBOX_PRUNE_INTERVAL: %s", cfg.InboxPruneInterval)
	}
	if cfg.KafkaConsumerWorkers < 1 {
		return nil, fmt.Errorf("invalid KAFKA_CONSUMER_WORKERS: %d", cfg.KafkaConsumerWorkers)
	}

	return cfg, nil
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return splitList(c.KafkaBrokerURL)
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
