package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read once at startup. A .env file is loaded into the
// environment before this runs (see main).
type Config struct {
	Port         int    `envconfig:"PORT" default:"5001"`
	PortAttempts int    `envconfig:"PORT_ATTEMPTS" default:"10"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding  string `envconfig:"LOG_ENCODING" default:"console"`

	// DatabaseURL is the hosted postgres store (e.g. Supabase). When empty
	// the server falls back to a local SQLite file.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"sparkquest.db"`
	SeedPath    string `envconfig:"SEED_PATH" default:"data/seed.json"`

	FrontendDir string   `envconfig:"FRONTEND_DIR" default:"frontend"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	MutationRetries int           `envconfig:"MUTATION_RETRIES" default:"5"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("load config: PORT %d out of range", cfg.Port)
	}
	if cfg.PortAttempts < 1 {
		cfg.PortAttempts = 1
	}
	if cfg.MutationRetries < 1 {
		cfg.MutationRetries = 1
	}
	origins := cfg.CORSOrigins[:0]
	for _, o := range cfg.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.CORSOrigins = origins
	return &cfg, nil
}

// StoreLabel names the backing store without leaking credentials.
func (c *Config) StoreLabel() string {
	if c.DatabaseURL != "" {
		return "postgres"
	}
	return "sqlite:" + c.SQLitePath
}
