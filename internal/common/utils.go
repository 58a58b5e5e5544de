package common

import (
	"github.com/google/uuid"
)

const (
	// Processing defaults
	DefaultDPI               = 150
	DefaultJPEGQuality       = 80
	DefaultBinarizeThreshold = 128
	MaxConcurrencyLimit      = 8

	// File operation constants
	DefaultFilePermissions = 0755
)

// GenerateUUID generates a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}
