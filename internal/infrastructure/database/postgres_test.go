package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: 5433, User: "notifier", Password: "secret", DBName: "notifications_db", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=notifier password=secret dbname=notifications_db sslmode=disable", cfg.DSN())
}
