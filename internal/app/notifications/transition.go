package notifications

import "notifier/internal/domain"

// ShouldDispatch reports whether the update changed the order status. The comparison is
// exact: a change in casing alone still counts as a transition.
func ShouldDispatch(before, after domain.OrderSnapshot) bool {
	return before.Status != after.Status
}
