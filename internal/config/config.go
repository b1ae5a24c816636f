// Package config reads runtime settings for the ripple CLI from the
// environment. An optional .env file in the working directory is loaded
// first; variables already set in the process environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings that command-line flags may override.
type Config struct {
	// DB is the SQLite database path.
	DB string `env:"RIPPLE_DB" envDefault:"ripple.db"`
	// Policy is an optional CUE policy file unified with the defaults.
	Policy string `env:"RIPPLE_POLICY"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"RIPPLE_LOG_LEVEL" envDefault:"warn"`
	// Format is the output format, text or json.
	Format string `env:"RIPPLE_FORMAT" envDefault:"text"`
}

// Load reads the given dotenv files (".env" when none are named) and then
// parses the environment into a Config. Missing dotenv files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("RIPPLE_FORMAT: unknown format %q (want text or json)", c.Format)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("RIPPLE_LOG_LEVEL: unknown level %q", c.LogLevel)
	}
	return nil
}
