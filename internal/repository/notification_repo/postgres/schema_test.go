package postgres

import (
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notificationsMigration = "../../../../migrations/000001_create_notifications.up.sql"

// Columns filled from events and push responses hold unbounded strings.
func TestNotificationsSchema_UnboundedColumns(t *testing.T) {
	raw, err := os.ReadFile(notificationsMigration)
	require.NoError(t, err)
	schema := string(raw)

	for _, column := range []string{"order_id", "status", "title", "body", "message_id", "error", "device_token"} {
		t.Run(column, func(t *testing.T) {
			def := regexp.MustCompile(`(?m)^\s*` + column + `\s+(\S+)`).FindStringSubmatch(schema)
			require.Len(t, def, 2, "column %s not found", column)
			assert.Equal(t, "TEXT", def[1])
		})
	}
}
