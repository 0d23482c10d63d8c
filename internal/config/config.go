// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"tokoadmin/internal/database"
)

// Config is the runtime configuration of the back office.
type Config struct {
	AppPort          string
	DatabaseDriver   string
	DatabaseDSN      string
	DatabaseDebug    bool
	RabbitMQURL      string
	RabbitMQExchange string
	RedisAddr        string
	ReportCacheTTL   time.Duration
	LogLevel         zerolog.Level
	LogFormat        string
}

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Load reads an optional .env file, then environment variables over the
// defaults.
func Load(envFiles ...string) (*Config, error) {
	// a missing .env is fine
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", database.DriverSQLite)
	v.SetDefault("DATABASE_DSN", "tokoadmin.db")
	v.SetDefault("DB_DEBUG", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "catalog")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REPORT_CACHE_TTL", "1m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", LogFormatConsole)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		DatabaseDriver:   strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		DatabaseDebug:    v.GetBool("DB_DEBUG"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		LogFormat:        strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	if !strings.HasPrefix(cfg.AppPort, ":") && !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}

	switch cfg.DatabaseDriver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	ttl, err := time.ParseDuration(v.GetString("REPORT_CACHE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_CACHE_TTL: %w", err)
	}
	cfg.ReportCacheTTL = ttl

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("LOG_LEVEL")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	switch cfg.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return nil, fmt.Errorf("unsupported LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

// Database returns the store connection settings.
func (c *Config) Database() database.Config {
	return database.Config{
		Driver: c.DatabaseDriver,
		DSN:    c.DatabaseDSN,
		Debug:  c.DatabaseDebug,
	}
}
