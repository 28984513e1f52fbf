package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annuksk07-cloud/xpenseflow/pkg/config"
)

const testSecret = "config-test-secret-that-is-long-enough"

func validConfig() *config.Config {
	return &config.Config{
		Port:        "8080",
		Env:         "development",
		SyncBackend: config.BackendMemory,
		JWTSecret:   testSecret,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid development config", func(c *config.Config) {}, false},
		{"unknown backend", func(c *config.Config) { c.SyncBackend = "dynamo" }, true},
		{"missing secret", func(c *config.Config) { c.JWTSecret = "" }, true},
		{"short secret", func(c *config.Config) { c.JWTSecret = "short" }, true},
		{"postgres without URL", func(c *config.Config) { c.SyncBackend = config.BackendPostgres }, true},
		{"postgres with URL", func(c *config.Config) {
			c.SyncBackend = config.BackendPostgres
			c.DatabaseURL = "postgres://localhost/ledger"
		}, false},
		{"memory backend in production", func(c *config.Config) { c.Env = "production" }, true},
		{"redis backend in production", func(c *config.Config) {
			c.Env = "production"
			c.SyncBackend = config.BackendRedis
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "")
	t.Setenv("SYNC_BACKEND", "")
	t.Setenv("TOAST_TTL", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.BackendMemory, cfg.SyncBackend)
	assert.Equal(t, 2800*time.Millisecond, cfg.ToastTTL)
}

func TestLoad_ToastTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	t.Run("duration syntax", func(t *testing.T) {
		t.Setenv("TOAST_TTL", "5s")
		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.ToastTTL)
	})

	t.Run("bare milliseconds", func(t *testing.T) {
		t.Setenv("TOAST_TTL", "1500")
		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, 1500*time.Millisecond, cfg.ToastTTL)
	})
}

func writeRatesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRates(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeRatesFile(t, "rates:\n  USD: 1\n  EUR: 0.92\n")
		rates, err := config.LoadRates(path)
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"USD": 1, "EUR": 0.92}, rates)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadRates(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty rates", func(t *testing.T) {
		path := writeRatesFile(t, "rates: {}\n")
		_, err := config.LoadRates(path)
		assert.Error(t, err)
	})

	t.Run("non-positive rate", func(t *testing.T) {
		path := writeRatesFile(t, "rates:\n  EUR: -1\n")
		_, err := config.LoadRates(path)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeRatesFile(t, "rates: [not a map\n")
		_, err := config.LoadRates(path)
		assert.Error(t, err)
	})
}
