package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AdminAttrPath != "custom:admin" {
		t.Errorf("AdminAttrPath = %q", cfg.AdminAttrPath)
	}
	if cfg.SessionCacheTTL != 60*time.Second {
		t.Errorf("SessionCacheTTL = %v", cfg.SessionCacheTTL)
	}
	if cfg.AuthRatePerMin != 30 {
		t.Errorf("AuthRatePerMin = %d", cfg.AuthRatePerMin)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NEXUS_HTTP_ADDR", ":9999")
	t.Setenv("BACKEND_BASE_URL", "http://backend:9000")
	t.Setenv("SESSION_CACHE_TTL_SEC", "5")
	t.Setenv("AUTH_RATE_PER_MIN", "bogus")

	cfg := Load()
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.BackendBaseURL != "http://backend:9000" {
		t.Errorf("BackendBaseURL = %q", cfg.BackendBaseURL)
	}
	if cfg.SessionCacheTTL != 5*time.Second {
		t.Errorf("SessionCacheTTL = %v", cfg.SessionCacheTTL)
	}
	// Unparseable numbers fall back to the default.
	if cfg.AuthRatePerMin != 30 {
		t.Errorf("AuthRatePerMin = %d", cfg.AuthRatePerMin)
	}
}
