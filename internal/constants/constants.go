package constants

import "time"

const (
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	ExternalAPITimeout = 10 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// ReassignSalt reseeds selection once the first assignment lost eligibility.
	ReassignSalt = "fallback"

	// MaxScheduleUpload bounds admin schedule uploads.
	MaxScheduleUpload = 4 << 20
)

const (
	AdminKeyHeader = "X-Admin-Key"
)
