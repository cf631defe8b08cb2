// Package config handles runtime configuration for the ledger: defaults,
// JSON overlay, and command-line flags, applied in that order.
package config

import (
	"time"

	"github.com/RyRy79261/intake-tracker-sub000/internal/aggregate"
	"github.com/RyRy79261/intake-tracker-sub000/internal/audit"
)

// Config holds the wiring settings for both storage backends and the
// periodic timers.
//
// Fields:
//   - SQLitePath: filename of the local embedded database.
//   - DatabaseDSN: PostgreSQL DSN for the remote store (pgx).
//   - SecretKey: HMAC secret for verifying bearer JWTs (HS256).
//   - AuditFlushDelay: coalescing window for audit batches.
//   - AggregateRefresh: invalidation period for cached window totals.
//   - RetentionDays: default audit retention for scheduled purges.
//   - S3AccessKey / S3SecretKey / S3Bucket / S3Region / S3BaseEndpoint:
//     object storage settings for backup archives.
type Config struct {
	SQLitePath       string
	DatabaseDSN      string
	SecretKey        string
	AuditFlushDelay  time.Duration
	AggregateRefresh time.Duration
	RetentionDays    int
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
}

func defaultConfig() *Config {
	return &Config{
		SQLitePath:       "ledger.db",
		AuditFlushDelay:  audit.DefaultFlushDelay,
		AggregateRefresh: aggregate.DefaultRefreshInterval,
		RetentionDays:    audit.DefaultRetentionDays,
	}
}

// LoadConfig builds the effective configuration: defaults, then the JSON
// file named by -c/-config if any, then recognized command-line flags.
func LoadConfig() *Config {
	config := defaultConfig()
	parseJson(config)
	parseFlags(config)
	return config
}
