package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all dashboard settings, populated from environment variables.
type Config struct {
	DatasetPath     string
	DatasetDSN      string
	DatasetTable    string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Forecast engine configuration.
	DefaultHorizon int
	CacheSize      int
	IntervalWidth  float64
	FourierOrder   int
	FitTimeout     time.Duration
}

// Horizon bounds accepted from the dashboard controls.
const (
	MinHorizon = 1
	MaxHorizon = 10
)

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present; variables already
// set in the environment take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}

	fitTimeout, err := parseDuration("FORECAST_TIMEOUT", "0s", true)
	if err != nil {
		return nil, err
	}

	horizon, err := parseIntInRange("FORECAST_DEFAULT_HORIZON", 5, MinHorizon, MaxHorizon)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseIntInRange("FORECAST_CACHE_SIZE", 256, 1, 1_000_000)
	if err != nil {
		return nil, err
	}

	fourierOrder, err := parseIntInRange("FORECAST_FOURIER_ORDER", 3, 1, 10)
	if err != nil {
		return nil, err
	}

	intervalWidth, err := parseIntervalWidth()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatasetPath:     envOrDefault("DATASET_PATH", "28_Trial_of_violent_crimes_by_courts.csv"),
		DatasetDSN:      os.Getenv("DATASET_DSN"),
		DatasetTable:    envOrDefault("DATASET_TABLE", "crime_records"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DefaultHorizon: horizon,
		CacheSize:      cacheSize,
		IntervalWidth:  intervalWidth,
		FourierOrder:   fourierOrder,
		FitTimeout:     fitTimeout,
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func parseIntInRange(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", key, lo, hi)
	}
	return n, nil
}

func parseIntervalWidth() (float64, error) {
	s := os.Getenv("FORECAST_INTERVAL_WIDTH")
	if s == "" {
		return 0.80, nil
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil || w <= 0 || w >= 1 {
		return 0, errors.New("invalid FORECAST_INTERVAL_WIDTH: must be in (0, 1)")
	}
	return w, nil
}
