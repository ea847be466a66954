// Package config loads flowgraph daemon settings from FLOWGRAPH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/smallnest/flowgraph/log"
)

// Store backends selectable with FLOWGRAPH_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreSqlite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds the daemon configuration.
type Config struct {
	HTTPAddr        string        `env:"FLOWGRAPH_HTTP_ADDR" envDefault:":8080"`
	MaxSteps        int           `env:"FLOWGRAPH_MAX_STEPS" envDefault:"100"`
	LogLevel        string        `env:"FLOWGRAPH_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"FLOWGRAPH_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Store string `env:"FLOWGRAPH_STORE" envDefault:"memory"`

	RedisAddr     string        `env:"FLOWGRAPH_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"FLOWGRAPH_REDIS_PASSWORD"`
	RedisDB       int           `env:"FLOWGRAPH_REDIS_DB" envDefault:"0"`
	RedisPrefix   string        `env:"FLOWGRAPH_REDIS_PREFIX" envDefault:"flowgraph:"`
	RedisTTL      time.Duration `env:"FLOWGRAPH_REDIS_TTL"`

	SqlitePath string `env:"FLOWGRAPH_SQLITE_PATH" envDefault:"file::memory:?cache=shared"`

	PostgresDSN string `env:"FLOWGRAPH_POSTGRES_DSN"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot start a daemon.
func (c Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("FLOWGRAPH_HTTP_ADDR must not be empty"))
	}
	if c.MaxSteps < 1 {
		errs = append(errs, fmt.Errorf("FLOWGRAPH_MAX_STEPS must be positive, got %d", c.MaxSteps))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("FLOWGRAPH_LOG_LEVEL: %w", err))
	}

	switch c.Store {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("FLOWGRAPH_REDIS_ADDR is required for the redis store"))
		}
	case StoreSqlite:
		if c.SqlitePath == "" {
			errs = append(errs, errors.New("FLOWGRAPH_SQLITE_PATH is required for the sqlite store"))
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("FLOWGRAPH_POSTGRES_DSN is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown FLOWGRAPH_STORE %q", c.Store))
	}

	return errors.Join(errs...)
}

// Level returns the parsed log level; Validate has already rejected bad values.
func (c Config) Level() log.LogLevel {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.LogLevelInfo
	}
	return level
}
