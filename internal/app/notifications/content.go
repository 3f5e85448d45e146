package notifications

import (
	"fmt"
	"strings"
)

type statusContent struct {
	title      string
	bodyFormat string
}

const (
	defaultTitle      = "Order Update"
	defaultBodyFormat = "Order #%s status updated to: %s"
)

// statusContents is keyed by lower-cased order status.
var statusContents = map[string]statusContent{
	"pending": {
		title:      "Order Received!",
		bodyFormat: "We have received order #%s and will start preparing it soon!",
	},
	"confirmed": {
		title:      "Order Confirmed!",
		bodyFormat: "Order #%s confirmed. Estimated time: 25-35 minutes.",
	},
	"preparing": {
		title:      "Food Being Prepared!",
		bodyFormat: "Our chefs are now preparing your delicious order #%s!",
	},
	"ready": {
		title:      "Order Ready for Collection!",
		bodyFormat: "Order #%s is ready! Please come and collect it.",
	},
	"collected": {
		title:      "Order Collected!",
		bodyFormat: "Thank you for collecting order #%s! Enjoy your meal!",
	},
}

func Title(status string) string {
	if c, ok := statusContents[strings.ToLower(status)]; ok {
		return c.title
	}
	return defaultTitle
}

// Body renders the notification text. Unknown statuses are echoed with their original casing.
func Body(status, orderNumber string) string {
	if c, ok := statusContents[strings.ToLower(status)]; ok {
		return fmt.Sprintf(c.bodyFormat, orderNumber)
	}
	return fmt.Sprintf(defaultBodyFormat, orderNumber, status)
}
