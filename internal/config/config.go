// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/soc-intake/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Ticket storage configuration
	Store StoreConfig

	// Syslog intake configuration
	Syslog SyslogConfig

	// Payload processing configuration
	Processing ProcessingConfig

	// Ticket defaults
	Tickets TicketConfig

	// LogLevel is the minimum zap level to emit.
	LogLevel string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
}

// StoreDriver selects the ticket store implementation.
type StoreDriver string

const (
	// StoreMemory keeps tickets in process memory.
	StoreMemory StoreDriver = "memory"

	// StoreSQLite persists tickets to a SQLite file.
	StoreSQLite StoreDriver = "sqlite"
)

// StoreConfig contains ticket storage settings.
type StoreConfig struct {
	Driver StoreDriver

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string
}

// SyslogConfig contains the UDP syslog listener settings.
type SyslogConfig struct {
	Enabled bool
	Port    int

	// MaxWorkers bounds concurrently processed datagrams.
	MaxWorkers int
}

// ProcessingConfig contains payload processing settings.
type ProcessingConfig struct {
	// MaxPayloadSize is the maximum accepted payload size in bytes.
	MaxPayloadSize int

	// LogPreviewSize is how much of a payload is echoed into logs.
	LogPreviewSize int

	// ResummarizeWorkers bounds parallel re-summarization.
	ResummarizeWorkers int
}

// TicketConfig contains values stamped on tickets created from incidents.
type TicketConfig struct {
	Reporter string
	Platform string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver:     StoreDriver(getEnvOrDefault("STORE_DRIVER", string(StoreMemory))),
			SQLitePath: getEnvOrDefault("SQLITE_PATH", "tickets.db"),
		},
		Syslog: SyslogConfig{
			Enabled:    getBoolOrDefault("SYSLOG_ENABLED", false),
			Port:       getIntOrDefault("SYSLOG_PORT", 5514),
			MaxWorkers: getIntOrDefault("SYSLOG_MAX_WORKERS", 100),
		},
		Processing: ProcessingConfig{
			MaxPayloadSize:     getIntOrDefault("MAX_PAYLOAD_SIZE", 1<<20), // 1 MiB
			LogPreviewSize:     getIntOrDefault("LOG_PREVIEW_SIZE", 1000),
			ResummarizeWorkers: getIntOrDefault("RESUMMARIZE_WORKERS", 8),
		},
		Tickets: TicketConfig{
			Reporter: getEnvOrDefault("TICKET_REPORTER", "admin@example.com"),
			Platform: getEnvOrDefault("TICKET_PLATFORM", "FortiSIEM"),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite store", domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: STORE_DRIVER must be memory or sqlite, got: %s", domain.ErrInvalidConfig, c.Store.Driver)
	}

	if c.Syslog.Enabled {
		if c.Syslog.Port < 1 || c.Syslog.Port > 65535 {
			return fmt.Errorf("%w: SYSLOG_PORT must be between 1 and 65535", domain.ErrInvalidConfig)
		}
		if c.Syslog.MaxWorkers < 1 {
			return fmt.Errorf("%w: SYSLOG_MAX_WORKERS must be at least 1", domain.ErrInvalidConfig)
		}
	}

	if c.Processing.MaxPayloadSize < 1000 {
		return fmt.Errorf("%w: MAX_PAYLOAD_SIZE must be at least 1000 bytes", domain.ErrInvalidConfig)
	}

	if c.Processing.LogPreviewSize < 0 {
		return fmt.Errorf("%w: LOG_PREVIEW_SIZE must not be negative", domain.ErrInvalidConfig)
	}

	if c.Processing.ResummarizeWorkers < 1 {
		return fmt.Errorf("%w: RESUMMARIZE_WORKERS must be at least 1", domain.ErrInvalidConfig)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Try parsing as seconds first (e.g., "15")
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
