// Package config assembles runtime configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/retrovault/retrovault/internal/comps"
)

// Environment variable names.
const (
	EnvDataDir          = "RETROVAULT_DATA_DIR"
	EnvGameValueKey     = "RETROVAULT_GAMEVALUE_API_KEY"
	EnvGameValueBaseURL = "RETROVAULT_GAMEVALUE_URL"
	EnvScraperBaseURL   = "RETROVAULT_SCRAPER_URL"
	EnvRequestTimeout   = "RETROVAULT_REQUEST_TIMEOUT"
	EnvRatePerSec       = "RETROVAULT_RATE_PER_SEC"
	EnvCacheTTL         = "RETROVAULT_CACHE_TTL"
	EnvRefreshSpec      = "RETROVAULT_REFRESH_CRON"
)

// Config is everything the application shell needs to wire itself up.
// All fields have defaults; missing optional keys are never an error.
type Config struct {
	DataDir string

	GameValueAPIKey  string
	GameValueBaseURL string
	ScraperBaseURL   string

	RequestTimeout time.Duration
	RatePerSec     float64
	CacheTTL       time.Duration

	// RefreshSpec is the cron schedule for background revaluation,
	// e.g. "0 6 * * *" for six in the morning daily.
	RefreshSpec string
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		DataDir:          envOr(EnvDataDir, defaultDataDir()),
		GameValueAPIKey:  os.Getenv(EnvGameValueKey),
		GameValueBaseURL: os.Getenv(EnvGameValueBaseURL),
		ScraperBaseURL:   os.Getenv(EnvScraperBaseURL),
		RequestTimeout:   envDuration(EnvRequestTimeout, 30*time.Second),
		RatePerSec:       envFloat(EnvRatePerSec, 2),
		CacheTTL:         envDuration(EnvCacheTTL, 6*time.Hour),
		RefreshSpec:      envOr(EnvRefreshSpec, "0 6 * * *"),
	}
}

// Comps maps the relevant fields onto the provider configuration.
func (c Config) Comps() comps.Config {
	return comps.Config{
		GameValueAPIKey:  c.GameValueAPIKey,
		GameValueBaseURL: c.GameValueBaseURL,
		ScraperBaseURL:   c.ScraperBaseURL,
		RequestTimeout:   c.RequestTimeout,
		RatePerSec:       c.RatePerSec,
		CacheTTL:         c.CacheTTL,
	}
}

// CachePath is the comps response cache location.
func (c Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache.json")
}

// CollectionPath is the purchase ledger location.
func (c Config) CollectionPath() string {
	return filepath.Join(c.DataDir, "collection.json")
}

// HistoryPath is the valuation snapshot store location.
func (c Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.json")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".retrovault")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
