package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := fromViper(load(filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "wa.send", cfg.AMQPQueue)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
}

func TestFromEnv_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg := fromViper(load(filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
}

func TestFromEnv_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AMQP_QUEUE=wa.test\nLOG_LEVEL=DEBUG\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("AMQP_QUEUE")
		_ = os.Unsetenv("LOG_LEVEL")
	})

	cfg := fromViper(load(path))
	assert.Equal(t, "wa.test", cfg.AMQPQueue)
	assert.Equal(t, "debug", cfg.LogLevel)
}
