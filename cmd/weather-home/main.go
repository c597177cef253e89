package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-home/internal/api/http"
	"github.com/i474232898/weather-home/internal/config"
	"github.com/i474232898/weather-home/internal/controller"
	"github.com/i474232898/weather-home/internal/observability"
	"github.com/i474232898/weather-home/internal/scheduler"
	"github.com/i474232898/weather-home/internal/store"
	"github.com/i474232898/weather-home/internal/weather/providers"
)

const serviceName = "weather-home"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("weather-home stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, zl *zap.Logger) error {
	metrics := observability.NewMetrics()

	// Remembered-city store.
	kv, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := kv.Close(); err != nil {
			zl.Warn("error closing store", zap.Error(err))
		}
	}()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// WeatherAPI client with resilience (backoff + circuit breaker).
	client := providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey,
		providers.WithBaseURL(cfg.WeatherAPIBaseURL),
		providers.WithLogger(zl.Named("weatherapi")),
	)

	screen := controller.New(client, kv, controller.Options{
		DefaultCity:    cfg.DefaultCity,
		ForecastDays:   cfg.ForecastDays,
		DebounceDelay:  cfg.SearchDebounce,
		MinQueryLength: cfg.SearchMinLen,
		RacePolicy:     cfg.RacePolicy,
		PersistTimeout: cfg.PersistTimeout,
	}, zl.Named("controller"), metrics)
	defer func() { _ = screen.Close() }()

	if err := screen.Start(); err != nil {
		return err
	}

	// Scheduler that periodically refreshes the displayed forecast.
	sched := scheduler.New(screen, cfg.RefreshInterval, zl)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterSystemRoutes(app, serviceName, prometheus.DefaultGatherer)
	httpapi.RegisterRoutes(app, screen)

	go func() {
		zl.Info("listening", zap.String("port", cfg.Port), zap.String("screen_id", screen.ID()))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Warn("error during shutdown", zap.Error(err))
	}
	return nil
}

func openStore(cfg *config.AppConfig) (store.KeyValue, error) {
	if cfg.StoreDriver == config.StoreMemory {
		return store.NewMemoryStore(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.PersistTimeout)
	defer cancel()
	return store.OpenSQLite(ctx, cfg.StorePath)
}
