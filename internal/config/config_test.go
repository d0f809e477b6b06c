package config

import (
	"errors"
	"testing"
	"time"

	"github.com/soc-intake/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SERVER_READ_TIMEOUT", "STORE_DRIVER", "SYSLOG_ENABLED",
		"MAX_PAYLOAD_SIZE", "RESUMMARIZE_WORKERS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Store.Driver != StoreMemory {
		t.Errorf("Driver = %q", cfg.Store.Driver)
	}
	if cfg.Syslog.Enabled {
		t.Error("syslog should be disabled by default")
	}
	if cfg.Processing.MaxPayloadSize != 1<<20 {
		t.Errorf("MaxPayloadSize = %d", cfg.Processing.MaxPayloadSize)
	}
	if cfg.Tickets.Platform != "FortiSIEM" {
		t.Errorf("Platform = %q", cfg.Tickets.Platform)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "15")
	t.Setenv("SERVER_WRITE_TIMEOUT", "1m")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/t.db")
	t.Setenv("SYSLOG_ENABLED", "true")
	t.Setenv("SYSLOG_PORT", "514")
	t.Setenv("RESUMMARIZE_WORKERS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != time.Minute {
		t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Store.Driver != StoreSQLite || cfg.Store.SQLitePath != "/tmp/t.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if !cfg.Syslog.Enabled || cfg.Syslog.Port != 514 {
		t.Errorf("Syslog = %+v", cfg.Syslog)
	}
	if cfg.Processing.ResummarizeWorkers != 3 {
		t.Errorf("ResummarizeWorkers = %d", cfg.Processing.ResummarizeWorkers)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:      StoreConfig{Driver: StoreMemory},
			Syslog:     SyslogConfig{Enabled: true, Port: 5514, MaxWorkers: 10},
			Processing: ProcessingConfig{MaxPayloadSize: 4096, LogPreviewSize: 100, ResummarizeWorkers: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, true},
		{"sqlite without path", func(c *Config) { c.Store.Driver = StoreSQLite }, true},
		{"syslog port out of range", func(c *Config) { c.Syslog.Port = 70000 }, true},
		{"disabled syslog ignores port", func(c *Config) { c.Syslog.Enabled = false; c.Syslog.Port = 0 }, false},
		{"syslog without workers", func(c *Config) { c.Syslog.MaxWorkers = 0 }, true},
		{"payload limit too small", func(c *Config) { c.Processing.MaxPayloadSize = 10 }, true},
		{"negative preview", func(c *Config) { c.Processing.LogPreviewSize = -1 }, true},
		{"no resummarize workers", func(c *Config) { c.Processing.ResummarizeWorkers = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig: %v", err)
			}
		})
	}
}
