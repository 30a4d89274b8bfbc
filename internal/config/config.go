// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// AuthSecret is the HMAC key used to verify bearer tokens. Required.
	AuthSecret string `env:"AUTH_SECRET,required,notEmpty"`

	// StoreLockTimeout bounds how long a statement waits for a row lock
	// before the store reports itself busy.
	StoreLockTimeout time.Duration `env:"STORE_LOCK_TIMEOUT" envDefault:"5s"`

	// StoreBusyRetries is how many extra attempts a busy unit of work gets.
	StoreBusyRetries uint64 `env:"STORE_BUSY_RETRIES" envDefault:"3"`

	// StoreBusyBackoff is the base delay of the exponential retry backoff.
	StoreBusyBackoff time.Duration `env:"STORE_BUSY_BACKOFF" envDefault:"50ms"`

	// RecheckOverlapOnPromote re-runs overlap detection when a suggestion
	// reaches quorum and blocks promotion on a conflict.
	RecheckOverlapOnPromote bool `env:"RECHECK_OVERLAP_ON_PROMOTE" envDefault:"false"`

	// MigrateOnStart applies pending migrations during bootstrap.
	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"true"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// MetricsEnabled serves Prometheus metrics at /metrics.
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads configuration from the process environment, after merging in a
// .env file from the working directory if one exists.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom builds a Config from environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if c.StoreLockTimeout <= 0 {
		return fmt.Errorf("STORE_LOCK_TIMEOUT must be positive, got %s", c.StoreLockTimeout)
	}
	if c.StoreBusyBackoff <= 0 {
		return fmt.Errorf("STORE_BUSY_BACKOFF must be positive, got %s", c.StoreBusyBackoff)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level. Load has already validated it.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// trimAll trims each entry, dropping empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
