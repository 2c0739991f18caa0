package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL", "DB_DRIVER", "DB_DSN",
	"OPEN_METEO_BASE_URL", "HTTP_TIMEOUT", "PROVIDER_MAX_RETRIES", "GEOCODER_API_KEY",
	"CACHE_CATEGORIES_TTL", "CACHE_WEATHER_TTL", "CACHE_GLOBAL_TTL", "CACHE_CLEANUP_INTERVAL",
	"STATIONS_PER_LOCATION", "GLOBAL_CONCURRENCY", "CATALOG_REFRESH_INTERVAL", "STORE_MAX_HISTORY",
}

// clearEnv blanks every key Load reads; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.OpenMeteoBaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0, cfg.ProviderMaxRetries)
	assert.Equal(t, 240*time.Hour, cfg.CategoriesTTL)
	assert.Equal(t, 5*time.Minute, cfg.WeatherTTL)
	assert.Equal(t, 50*time.Minute, cfg.GlobalTTL)
	assert.Equal(t, 10*time.Minute, cfg.CacheCleanupInterval)
	assert.Equal(t, 3, cfg.StationsPerLocation)
	assert.Equal(t, 4, cfg.GlobalConcurrency)
	assert.Equal(t, 24*time.Hour, cfg.CatalogRefreshInterval)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://u:p@localhost/meteo?sslmode=disable")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_WEATHER_TTL", "1m")
	t.Setenv("GLOBAL_CONCURRENCY", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.WeatherTTL)
	assert.Equal(t, 8, cfg.GlobalConcurrency)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"missing dsn", map[string]string{"DB_DRIVER": "sqlite3"}},
		{"bad duration", map[string]string{"CACHE_GLOBAL_TTL": "soon"}},
		{"bad int", map[string]string{"STATIONS_PER_LOCATION": "three"}},
		{"zero stations", map[string]string{"STATIONS_PER_LOCATION": "0"}},
		{"negative retries", map[string]string{"PROVIDER_MAX_RETRIES": "-1"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "chatty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
