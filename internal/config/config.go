package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverMemory   = "memory"
)

type AppConfig struct {
	Port     string
	AppEnv   string // "dev" or "prod"
	LogLevel slog.Level

	DBDriver string
	DBDSN    string

	OpenMeteoBaseURL   string
	HTTPTimeout        time.Duration
	ProviderMaxRetries int
	GeocoderAPIKey     string

	// Cache lifetimes per key class.
	CategoriesTTL        time.Duration
	WeatherTTL           time.Duration
	GlobalTTL            time.Duration
	CacheCleanupInterval time.Duration

	StationsPerLocation int
	GlobalConcurrency   int

	// CatalogRefreshInterval controls how often the category catalog is reloaded.
	CatalogRefreshInterval time.Duration

	// In-memory store retention (DB_DRIVER=memory only).
	StoreMaxHistory int // max number of readings per station (0 = unlimited)
}

// Load reads configuration from environment with sensible defaults.
// The caller is expected to have loaded any .env file beforehand.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.AppEnv = getenvDefault("APP_ENV", "dev")

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.DBDriver = strings.ToLower(getenvDefault("DB_DRIVER", DriverMemory))
	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
		cfg.DBDSN = os.Getenv("DB_DSN")
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for DB_DRIVER=%s", cfg.DBDriver)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q (allowed: postgres, sqlite3, memory)", cfg.DBDriver)
	}

	cfg.OpenMeteoBaseURL = getenvDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com/v1/forecast")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"CACHE_CATEGORIES_TTL", "240h", &cfg.CategoriesTTL},
		{"CACHE_WEATHER_TTL", "5m", &cfg.WeatherTTL},
		{"CACHE_GLOBAL_TTL", "50m", &cfg.GlobalTTL},
		{"CACHE_CLEANUP_INTERVAL", "10m", &cfg.CacheCleanupInterval},
		{"CATALOG_REFRESH_INTERVAL", "24h", &cfg.CatalogRefreshInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"PROVIDER_MAX_RETRIES", 0, &cfg.ProviderMaxRetries},
		{"STATIONS_PER_LOCATION", 3, &cfg.StationsPerLocation},
		{"GLOBAL_CONCURRENCY", 4, &cfg.GlobalConcurrency},
		{"STORE_MAX_HISTORY", 0, &cfg.StoreMaxHistory},
	}
	for _, i := range ints {
		v, err := getenvInt(i.key, i.def)
		if err != nil {
			return nil, err
		}
		*i.dst = v
	}

	if cfg.ProviderMaxRetries < 0 {
		return nil, fmt.Errorf("invalid PROVIDER_MAX_RETRIES: must not be negative")
	}
	if cfg.StationsPerLocation <= 0 {
		return nil, fmt.Errorf("invalid STATIONS_PER_LOCATION: must be positive")
	}
	if cfg.GlobalConcurrency <= 0 {
		return nil, fmt.Errorf("invalid GLOBAL_CONCURRENCY: must be positive")
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
