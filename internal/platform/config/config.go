// Package config loads process configuration from the environment so main
// stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures everything the server reads from the environment.
type Config struct {
	Addr        string `env:"CRM_ADDR" envDefault:":8080"`
	Environment string `env:"CRM_ENV" envDefault:"development"`
	LogLevel    string `env:"CRM_LOG_LEVEL" envDefault:"info"`

	// DatabaseURL enables the Postgres stores; empty keeps everything in memory.
	DatabaseURL string `env:"DATABASE_URL"`
	// RedisURL enables the Redis session store fast path.
	RedisURL string `env:"REDIS_URL"`

	// SessionSecret signs the session cookie. The default only exists so local
	// development works out of the box; production must override it.
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev-secret-change-in-production"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// ReportCacheTTL bounds how long aggregate report snapshots are served
	// before recomputation.
	ReportCacheTTL time.Duration `env:"REPORT_CACHE_TTL" envDefault:"60m"`

	// OpenAIAPIKey enables the AI assist endpoints; empty disables them.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	SeedDemoData bool `env:"SEED_DEMO_DATA" envDefault:"false"`
}

// Load reads a local .env file when present, then parses the environment.
func Load() (Config, error) {
	// Missing .env is fine; environment variables always win.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether verbose error detail may be surfaced.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}
