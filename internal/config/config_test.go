package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IndexSymbol != "NIFTY 50" || cfg.HistoryCapacity != 100 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.QuoteCacheTTL != time.Minute || cfg.ProviderTimeout != 15*time.Second {
		t.Fatalf("unexpected durations: ttl=%v timeout=%v", cfg.QuoteCacheTTL, cfg.ProviderTimeout)
	}
	if cfg.MoverThreshold != 2.0 || cfg.RecomputeEvery != 3 {
		t.Fatalf("unexpected analysis defaults: %+v", cfg)
	}
	if len(cfg.MarketDays) != 5 {
		t.Fatalf("expected weekday mask, got %v", cfg.MarketDays)
	}

	h, err := cfg.Hours()
	if err != nil {
		t.Fatalf("unexpected hours error: %v", err)
	}
	if h.Open != 9*60+15 || h.PreOpenStart != 9*60 || !h.Days[time.Friday] || h.Days[time.Saturday] {
		t.Fatalf("unexpected hours: %+v", h)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("HISTORY_CAPACITY", "250")
	t.Setenv("PROVIDER_TIMEOUT", "12s")
	t.Setenv("SSH_ALLOWED_FINGERPRINTS", "SHA256:a,SHA256:b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.HistoryCapacity != 250 || cfg.ProviderTimeout != 12*time.Second {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if len(cfg.SSHAllowedFingerprints) != 2 {
		t.Fatalf("expected 2 fingerprints, got %v", cfg.SSHAllowedFingerprints)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"NSE_BASE_URL":     "not a url",
		"PROVIDER_TIMEOUT": "45s",
		"HISTORY_CAPACITY": "5",
		"HTTP_PORT":        "abc",
		"MARKET_OPEN":      "9am",
		"LOG_FORMAT":       "xml",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
