package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"sqlite_path":       "custom.db",
		"database_dsn":      "postgres://u:p@host:5432/ledger",
		"secret_key":        "my_secret_key",
		"audit_flush_delay": "2s",
		"aggregate_refresh": "30s",
		"retention_days":    30,
		"s3_access_key":     "user",
		"s3_secret_key":     "password",
		"s3_bucket":         "bucket",
		"s3_region":         "region",
		"s3_base_endpoint":  "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "custom.db", cfg.SQLitePath)
		assert.Equal(t, "postgres://u:p@host:5432/ledger", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Second, cfg.AuditFlushDelay)
		assert.Equal(t, 30*time.Second, cfg.AggregateRefresh)
		assert.Equal(t, 30, cfg.RetentionDays)
		assert.Equal(t, "user", cfg.S3AccessKey)
		assert.Equal(t, "password", cfg.S3SecretKey)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			SQLitePath:       "defaults.db",
			SecretKey:        "key",
			AuditFlushDelay:  2 * time.Second,
			AggregateRefresh: 3 * time.Second,
			RetentionDays:    45,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults.db", cfg.SQLitePath)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Second, cfg.AuditFlushDelay)
		assert.Equal(t, 3*time.Second, cfg.AggregateRefresh)
		assert.Equal(t, 45, cfg.RetentionDays)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
