package domain

import "errors"

var (
	ErrMissingBeforeSnapshot = errors.New("order update has no before snapshot")
	ErrMissingAfterSnapshot  = errors.New("order update has no after snapshot")
)

const orderNumberSuffixLen = 6

// OrderSnapshot is one observed side of an order record update.
type OrderSnapshot struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	OrderNumber string `json:"order_number,omitempty"`
	DeviceToken string `json:"device_token,omitempty"`
}

// OrderUpdatedEvent is delivered by the order store whenever an order record changes.
type OrderUpdatedEvent struct {
	OrderID string         `json:"order_id"`
	Before  *OrderSnapshot `json:"before"`
	After   *OrderSnapshot `json:"after"`
}

// HumanOrderNumber returns the order number shown to customers. Orders without one
// use the tail of their identifier.
func HumanOrderNumber(orderID string, after *OrderSnapshot) string {
	if after != nil && after.OrderNumber != "" {
		return after.OrderNumber
	}
	if len(orderID) <= orderNumberSuffixLen {
		return orderID
	}
	return orderID[len(orderID)-orderNumberSuffixLen:]
}

// StatusOrUnknown is the best-effort status used when a dispatch fails.
func (e *OrderUpdatedEvent) StatusOrUnknown() string {
	if e == nil || e.After == nil || e.After.Status == "" {
		return StatusUnknown
	}
	return e.After.Status
}
