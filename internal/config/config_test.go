package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.DataDir == "" {
		t.Error("Expected a default data dir")
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.RequestTimeout)
	}
	if cfg.RatePerSec != 2 {
		t.Errorf("Expected default rate 2/s, got %v", cfg.RatePerSec)
	}
	if cfg.RefreshSpec == "" {
		t.Error("Expected a default refresh schedule")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/vault")
	t.Setenv(EnvGameValueKey, "abc123")
	t.Setenv(EnvRequestTimeout, "5s")
	t.Setenv(EnvRatePerSec, "0.5")
	t.Setenv(EnvCacheTTL, "1h")

	cfg := FromEnv()
	if cfg.DataDir != "/tmp/vault" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.GameValueAPIKey != "abc123" {
		t.Errorf("GameValueAPIKey = %q", cfg.GameValueAPIKey)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.RatePerSec != 0.5 {
		t.Errorf("RatePerSec = %v", cfg.RatePerSec)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv(EnvRequestTimeout, "soonish")
	t.Setenv(EnvRatePerSec, "lots")

	cfg := FromEnv()
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected fallback timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.RatePerSec != 2 {
		t.Errorf("Expected fallback rate, got %v", cfg.RatePerSec)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/vault")
	cfg := FromEnv()

	if cfg.CachePath() != "/tmp/vault/cache.json" {
		t.Errorf("CachePath = %q", cfg.CachePath())
	}
	if cfg.CollectionPath() != "/tmp/vault/collection.json" {
		t.Errorf("CollectionPath = %q", cfg.CollectionPath())
	}
	if cfg.HistoryPath() != "/tmp/vault/history.json" {
		t.Errorf("HistoryPath = %q", cfg.HistoryPath())
	}
}
