package inbox_repo

import (
	"context"
	"time"

	"notifier/internal/domain"
)

type InboxRepository interface {
	// Claim records msg and reports whether this call was the first to see its key.
	Claim(ctx context.Context, msg *domain.InboxMessage) (bool, error)
	DeleteReceivedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
