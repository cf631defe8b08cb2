package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := defaultConfig()

	assert.Equal(t, c.SQLitePath, "ledger.db")
	assert.Equal(t, c.DatabaseDSN, "")
	assert.Equal(t, c.AuditFlushDelay, 1*time.Second)
	assert.Equal(t, c.AggregateRefresh, 60*time.Second)
	assert.Equal(t, c.RetentionDays, 90)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.SQLitePath, "ledger.db")
	assert.Equal(t, c.DatabaseDSN, "")
	assert.Equal(t, c.SecretKey, "")
	assert.Equal(t, c.AuditFlushDelay, 1*time.Second)
	assert.Equal(t, c.AggregateRefresh, 60*time.Second)
	assert.Equal(t, c.RetentionDays, 90)
}
