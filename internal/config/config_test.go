package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Portfolio.StartingBalance != "1000" {
		t.Errorf("StartingBalance = %q, want 1000", cfg.Portfolio.StartingBalance)
	}
	if cfg.Prices.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval = %v, want 30s", cfg.Prices.RefreshInterval)
	}
	if len(cfg.Prices.CoinIDs) == 0 {
		t.Error("CoinIDs defaulted to empty")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CFS_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("CFS_COINS", "bitcoin, pepe ,")
	t.Setenv("CFS_RATE_LIMIT_RPS", "2.5")
	t.Setenv("CFS_PRICE_REFRESH", "5s")
	t.Setenv("CFS_RATE_LIMIT_BURST", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Prices.CoinIDs) != 2 || cfg.Prices.CoinIDs[1] != "pepe" {
		t.Errorf("CoinIDs = %v, want [bitcoin pepe]", cfg.Prices.CoinIDs)
	}
	if cfg.RateLimit.RPS != 2.5 {
		t.Errorf("RPS = %v, want 2.5", cfg.RateLimit.RPS)
	}
	if cfg.Prices.RefreshInterval != 5*time.Second {
		t.Errorf("RefreshInterval = %v, want 5s", cfg.Prices.RefreshInterval)
	}
	// invalid values fall back to the default
	if cfg.RateLimit.Burst != 10 {
		t.Errorf("Burst = %v, want default 10", cfg.RateLimit.Burst)
	}
}
