package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	httpapi "github.com/i474232898/weather-data-query/internal/api/http"
	"github.com/i474232898/weather-data-query/internal/cache"
	"github.com/i474232898/weather-data-query/internal/config"
	"github.com/i474232898/weather-data-query/internal/logging"
	"github.com/i474232898/weather-data-query/internal/scheduler"
	"github.com/i474232898/weather-data-query/internal/store"
	"github.com/i474232898/weather-data-query/internal/weather"
	"github.com/i474232898/weather-data-query/internal/weather/providers"
)

const appName = "weather-data-query"

func main() {
	envErr := godotenv.Load()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.AppEnv, cfg.LogLevel, appName)
	slog.SetDefault(log)
	if envErr != nil {
		log.Info("no .env file loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reference data and readings.
	var st weather.Store
	switch cfg.DBDriver {
	case config.DriverMemory:
		st = store.NewMemoryStore(cfg.StoreMaxHistory)
		log.Warn("using in-memory store; no stations are loaded")
	default:
		sqlStore, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN, log)
		if err != nil {
			log.Error("failed to open store", "driver", cfg.DBDriver, "error", err)
			os.Exit(1)
		}
		st = sqlStore
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Open-Meteo with resilience (circuit breaker, optional retries).
	provider := providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoBaseURL, cfg.ProviderMaxRetries)

	var geo weather.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}

	memCache := cache.New(cfg.CacheCleanupInterval)

	service := weather.NewService(st, provider, memCache, weather.Options{
		TTL: weather.TTLConfig{
			Categories: cfg.CategoriesTTL,
			Weather:    cfg.WeatherTTL,
			Global:     cfg.GlobalTTL,
		},
		StationsPerLocation: cfg.StationsPerLocation,
		GlobalConcurrency:   cfg.GlobalConcurrency,
		Geocoder:            geo,
		Logger:              log,
	})

	// Scheduler that keeps the category catalog fresh.
	sched := scheduler.New(service, cfg.CatalogRefreshInterval, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Nationwide queries fan out to every department.
		WriteTimeout: 60 * time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Info("http server listening", "port", cfg.Port, "driver", cfg.DBDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	sched.Stop()
	memCache.Flush()
	if c, ok := st.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}
}
