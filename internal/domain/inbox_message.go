package domain

import (
	"context"
	"database/sql"
	"time"
)

// InboxMessage marks a trigger as already handled so redeliveries are skipped.
type InboxMessage struct {
	ID         string
	Key        string
	Source     string
	ReceivedAt time.Time
}

const (
	InboxSourceKafka = "kafka"
	InboxSourceHTTP  = "http"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
