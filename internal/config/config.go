package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
)

type Config struct {
	// HTTP Server
	Port            string        `env:"PORT" envDefault:"8081"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Local store
	LocalBackend string `env:"LOCAL_BACKEND" envDefault:"sqlite"`
	LocalDBPath  string `env:"LOCAL_DB_PATH" envDefault:"./data/expensetracker.db"`

	// Cloud store, disabled when the URL is empty
	CloudDatabaseURL string `env:"CLOUD_DATABASE_URL"`
	CloudMigrate     bool   `env:"CLOUD_MIGRATE" envDefault:"true"`
	AuthJWTSecret    string `env:"AUTH_JWT_SECRET"`

	// AMQP change notifications, disabled when the URL is empty
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"expensetracker.changes"`

	// Read cache
	CacheSize          int           `env:"CACHE_SIZE" envDefault:"256"`
	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	RevalidateInterval time.Duration `env:"REVALIDATE_INTERVAL" envDefault:"1m"`

	// Google Sheets export, disabled when the spreadsheet id is empty
	GoogleSpreadsheetID      string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName          string `env:"GOOGLE_SHEET_NAME" envDefault:"Expenses"`
	GoogleServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// CloudEnabled reports whether a remote backend is configured.
func (c *Config) CloudEnabled() bool { return c.CloudDatabaseURL != "" }

func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

func (c *Config) SheetsEnabled() bool { return c.GoogleSpreadsheetID != "" }

// Validate returns every problem found, joined into one error.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.LocalBackend {
	case "sqlite":
		if c.LocalDBPath == "" {
			errors = append(errors, "local database path cannot be empty when using sqlite backend")
		}
	case "memory":
	default:
		errors = append(errors, fmt.Sprintf("invalid local backend '%s': must be one of [sqlite memory]", c.LocalBackend))
	}

	if c.CloudEnabled() {
		if u, err := url.Parse(c.CloudDatabaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid cloud database URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid cloud database URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
		if len(c.AuthJWTSecret) < 16 {
			errors = append(errors, "AUTH_JWT_SECRET must be at least 16 characters when a cloud database is configured")
		}
	}

	if c.AMQPEnabled() {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if c.RevalidateInterval != 0 && c.RevalidateInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid revalidate interval %v: must be 0 or at least 1 second", c.RevalidateInterval))
	}

	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet id is set")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
