// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the card service.
// Environment variables are parsed from the CARDKEEP_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Database driver: sqlite, postgres, or auto. Auto picks postgres when
	// a DSN is configured and falls back to a local sqlite file otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"cardkeep.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Remote gateway. Empty means the process runs standalone and is the
	// authoritative side.
	RemoteURL         string `envconfig:"REMOTE_URL" default:""`
	RemoteTimeoutSecs int    `envconfig:"REMOTE_TIMEOUT_SECS" default:"30"`

	// Health probe cadence in seconds.
	HealthIntervalSecs int `envconfig:"HEALTH_INTERVAL_SECS" default:"30"`
}

// ResolveDefaults derives DBDriver when set to "auto" or empty and rejects
// unknown drivers.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}

	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite driver requires CARDKEEP_SQLITE_PATH")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres driver requires CARDKEEP_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with CARDKEEP_, for example CARDKEEP_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CARDKEEP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Bool("remote_configured", cfg.RemoteURL != "").
		Msg("configuration loaded")

	return &cfg, nil
}
