// Package config loads process configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs to start.
type Config struct {
	// DBPath is the SQLite database file. Parent directories are
	// created on startup.
	DBPath string `env:"LEDGER_DB" envDefault:"./data/ledger.db"`

	// Currency is the process-wide default currency code stored with
	// every entry.
	Currency string `env:"DEFAULT_CCY" envDefault:"TWD"`

	// Addr is the HTTP listen address.
	Addr string `env:"ADDR" envDefault:":8080"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
