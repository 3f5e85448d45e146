package notifications

import "errors"

var ErrInvalidEvent = errors.New("invalid order update event")

type Outcome string

const (
	OutcomeGatedOut        Outcome = "gated_out"
	OutcomeNoDestination   Outcome = "no_destination"
	OutcomeRecordedSuccess Outcome = "recorded_success"
	OutcomeRecordedFailure Outcome = "recorded_failure"
	// OutcomeDuplicate is reported by trigger adapters that skipped a redelivered event.
	OutcomeDuplicate       Outcome = "duplicate"
	OutcomeInvalid         Outcome = "invalid_event"
)

// Result is the terminal state of one HandleOrderUpdate call. Err is set for failures;
// it is informational only, callers must not retry on it.
type Result struct {
	Outcome   Outcome `json:"outcome"`
	MessageID string  `json:"message_id,omitempty"`
	RecordID  string  `json:"record_id,omitempty"`
	Err       error   `json:"-"`
}

type NotificationResponse struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"orderId"`
	Status      string  `json:"status"`
	Title       *string `json:"title,omitempty"`
	Body        *string `json:"body,omitempty"`
	Timestamp   string  `json:"timestamp"`
	Sent        bool    `json:"sent"`
	MessageID   *string `json:"messageId,omitempty"`
	Error       *string `json:"error,omitempty"`
	Type        string  `json:"type"`
	DeviceToken *string `json:"deviceToken,omitempty"`
}
