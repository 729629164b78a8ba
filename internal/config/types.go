// Package config manages application configuration from default values,
// an optional config.yaml file, and ANALIZATOR_* environment variables.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration indicates a configuration loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration. Values can be set via
// environment variables prefixed with ANALIZATOR_ (e.g. ANALIZATOR_TELEGRAM_TOKEN)
// or through config.yaml.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"      validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"required,min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,min=1s"`
}

// TelegramConfig holds the bot credentials used for message delivery.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

// DatabaseConfig holds connection pool and retry settings for PostgreSQL.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"               validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"required,gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`

	// RetryAttempts bounds how many times a store operation is attempted
	// when the connection to the database is lost; RetryStep is the unit
	// of the increasing per-attempt backoff (1x, 2x, 3x ...).
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"required,min=1,max=10"`
	RetryStep     time.Duration `mapstructure:"retry_step"     validate:"required,min=1ms"`
}
