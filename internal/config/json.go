package config

import (
	"encoding/json"
	"os"

	"github.com/RyRy79261/intake-tracker-sub000/internal/flagx"
	"github.com/RyRy79261/intake-tracker-sub000/internal/timex"
)

// JsonConfig is the DTO used only for reading the JSON configuration file.
// Interval fields use timex.Duration so both "1s" strings and integer
// nanoseconds parse; values are then copied into the runtime Config.
type JsonConfig struct {
	SQLitePath       string         `json:"sqlite_path"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	AuditFlushDelay  timex.Duration `json:"audit_flush_delay"`
	AggregateRefresh timex.Duration `json:"aggregate_refresh"`
	RetentionDays    int            `json:"retention_days"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags. When no file is named, nothing is loaded. An unreadable
// or invalid file panics: a half-applied config is worse than a crash at
// startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.SQLitePath != "" {
		config.SQLitePath = c.SQLitePath
	}
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	if c.AuditFlushDelay.Duration > 0 {
		config.AuditFlushDelay = c.AuditFlushDelay.Duration
	}
	if c.AggregateRefresh.Duration > 0 {
		config.AggregateRefresh = c.AggregateRefresh.Duration
	}
	if c.RetentionDays > 0 {
		config.RetentionDays = c.RetentionDays
	}
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
