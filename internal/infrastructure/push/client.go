package push

import (
	"context"

	"notifier/internal/domain"
)

// Client delivers a push message synchronously and returns the delivery identifier
// assigned by the transport.
type Client interface {
	Send(ctx context.Context, msg *domain.PushMessage) (string, error)
}

// RedactToken keeps the first 20 characters of a device token for logs and audit records.
func RedactToken(token string) string {
	const keep = 20
	if runes := []rune(token); len(runes) > keep {
		token = string(runes[:keep])
	}
	return token + "..."
}
