package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "PORT_ATTEMPTS", "LOG_LEVEL", "LOG_ENCODING", "DATABASE_URL", "SQLITE_PATH",
	"SEED_PATH", "FRONTEND_DIR", "CORS_ORIGINS", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"SESSION_TTL", "MUTATION_RETRIES",
}

// clearConfigEnv unsets every config key for the duration of the test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5001, cfg.Port)
	assert.Equal(t, 10, cfg.PortAttempts)
	assert.Equal(t, "sparkquest.db", cfg.SQLitePath)
	assert.Equal(t, "data/seed.json", cfg.SeedPath)
	assert.Equal(t, "frontend", cfg.FrontendDir)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.MutationRetries)
	assert.Empty(t, cfg.CORSOrigins)
	assert.Equal(t, "sqlite:sparkquest.db", cfg.StoreLabel())
}

func TestLoadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("PORT_ATTEMPTS", "0")
	t.Setenv("DATABASE_URL", "postgres://user:secret@db:5432/sparkquest")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SESSION_TTL", "15m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 1, cfg.PortAttempts)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "postgres", cfg.StoreLabel())
}

func TestLoadConfigErrors(t *testing.T) {
	for _, tc := range []struct{ key, value string }{
		{"PORT", "70000"},
		{"PORT", "abc"},
		{"SESSION_TTL", "soon"},
	} {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
