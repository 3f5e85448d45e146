package util

import "github.com/google/uuid"

// GenerateUUID returns a random (v4) UUID string for record and inbox ids.
func GenerateUUID() string {
	return uuid.NewString()
}
