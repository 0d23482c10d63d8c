package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoadmin/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "tokoadmin.db", cfg.DatabaseDSN)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, "catalog", cfg.RabbitMQExchange)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, config.LogFormatConsole, cfg.LogFormat)
	assert.False(t, cfg.DatabaseDebug)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_DSN", "host=db user=toko dbname=toko sslmode=disable")
	t.Setenv("DB_DEBUG", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REPORT_CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.True(t, cfg.DatabaseDebug)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, config.LogFormatJSON, cfg.LogFormat)

	db := cfg.Database()
	assert.Equal(t, "postgres", db.Driver)
	assert.True(t, db.Debug)
}

func TestLoad_DotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RABBITMQ_EXCHANGE=catalog-test\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RABBITMQ_EXCHANGE") })

	cfg, err := config.Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "catalog-test", cfg.RabbitMQExchange)
}

func TestLoad_MalformedDotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("APP-PORT=9090\n"), 0o600))

	_, err := config.Load(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read env file")
}

func TestLoad_Invalid(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")
	tests := []struct {
		key, value string
	}{
		{"DATABASE_DRIVER", "oracle"},
		{"REPORT_CACHE_TTL", "soon"},
		{"LOG_LEVEL", "loud"},
		{"LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load(missing)
			assert.Error(t, err)
		})
	}
}
