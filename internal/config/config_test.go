package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORTAL_PORT", "PORTAL_STORE", "PORTAL_SESSION_TTL", "PORTAL_LOGIN_DELAY", "PORTAL_CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" || cfg.Store != StoreMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 8*time.Hour || cfg.LoginDelay != 800*time.Millisecond || cfg.PowerBITimeout != 15*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.CORSOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORTAL_PORT", "9090")
	t.Setenv("PORTAL_STORE", "Redis")
	t.Setenv("PORTAL_SESSION_TTL", "30m")
	t.Setenv("PORTAL_POWERBI_TIMEOUT", "5")
	t.Setenv("PORTAL_COOKIE_SECURE", "true")
	t.Setenv("PORTAL_CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("PORTAL_RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()
	if cfg.Port != "9090" || cfg.Store != StoreRedis {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.PowerBITimeout != 5*time.Second {
		t.Fatalf("unexpected durations: %v %v", cfg.SessionTTL, cfg.PowerBITimeout)
	}
	if !cfg.CookieSecure {
		t.Fatal("expected secure cookies")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.RateLimitBurst != 30 {
		t.Fatalf("invalid value should fall back, got %d", cfg.RateLimitBurst)
	}
}
