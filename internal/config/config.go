package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-home/internal/controller"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	WeatherAPIKey     string
	WeatherAPIBaseURL string

	// Screen behaviour.
	DefaultCity    string
	ForecastDays   int
	SearchDebounce time.Duration
	SearchMinLen   int
	RacePolicy     controller.RacePolicy

	HTTPTimeout    time.Duration
	PersistTimeout time.Duration

	// RefreshInterval re-fetches the displayed city; 0 disables it.
	RefreshInterval time.Duration

	StoreDriver string
	StorePath   string

	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	if cfg.WeatherAPIKey == "" {
		return nil, errors.New("WEATHERAPI_API_KEY is required")
	}
	cfg.WeatherAPIBaseURL = getenvDefault("WEATHERAPI_BASE_URL", "https://api.weatherapi.com/v1")

	cfg.DefaultCity = strings.TrimSpace(getenvDefault("DEFAULT_CITY", "Islamabad"))
	if cfg.DefaultCity == "" {
		return nil, errors.New("DEFAULT_CITY must not be blank")
	}

	var err error
	if cfg.ForecastDays, err = getenvInt("FORECAST_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.ForecastDays < 1 || cfg.ForecastDays > 14 {
		return nil, fmt.Errorf("invalid FORECAST_DAYS: %d (must be 1-14)", cfg.ForecastDays)
	}

	if cfg.SearchDebounce, err = getenvDuration("SEARCH_DEBOUNCE", "1200ms"); err != nil {
		return nil, err
	}
	if cfg.SearchMinLen, err = getenvInt("SEARCH_MIN_LENGTH", 3); err != nil {
		return nil, err
	}
	if cfg.SearchMinLen < 1 {
		return nil, fmt.Errorf("invalid SEARCH_MIN_LENGTH: %d", cfg.SearchMinLen)
	}

	cfg.RacePolicy, err = controller.ParseRacePolicy(getenvDefault("RACE_POLICY", string(controller.PolicyLatestIssued)))
	if err != nil {
		return nil, fmt.Errorf("invalid RACE_POLICY: %w", err)
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.PersistTimeout, err = getenvDuration("PERSIST_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.StoreDriver = getenvDefault("STORE_DRIVER", StoreSQLite)
	if cfg.StoreDriver != StoreMemory && cfg.StoreDriver != StoreSQLite {
		return nil, fmt.Errorf("invalid STORE_DRIVER: %q (want %q or %q)", cfg.StoreDriver, StoreMemory, StoreSQLite)
	}
	cfg.StorePath = getenvDefault("STORE_PATH", "weather-home.db")

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	return cfg, nil
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

// getenvDuration parses a non-negative duration.
func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
