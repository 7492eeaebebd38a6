// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Reporting backend the gateway routes dashboard calls to.
	BackendBaseURL string

	// Hosted identity provider (Cognito-compatible JSON API).
	IDPEndpoint string
	IDPClientID string

	// OIDC / JWT verification of browser access tokens.
	Issuer  string
	JWKSURL string

	// Attribute holding the admin flag; JMESPath over the attribute document.
	AdminAttrPath string

	SessionCacheTTL time.Duration
	AuthRatePerMin  int

	// Optional YAML manifest overriding the built-in view sets.
	ViewManifest string

	// Redis & Postgres for durable tenant selections.
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:             env("NEXUS_ENV", "dev"),
		HTTPAddr:        env("NEXUS_HTTP_ADDR", ":8080"),
		BackendBaseURL:  env("BACKEND_BASE_URL", "http://localhost:9000"),
		IDPEndpoint:     env("IDP_ENDPOINT", ""),
		IDPClientID:     env("IDP_CLIENT_ID", ""),
		Issuer:          env("OIDC_ISSUER", ""),
		JWKSURL:         env("JWKS_URL", ""),
		AdminAttrPath:   env("ADMIN_ATTRIBUTE_PATH", "custom:admin"),
		SessionCacheTTL: envDur("SESSION_CACHE_TTL_SEC", 60) * time.Second,
		AuthRatePerMin:  envInt("AUTH_RATE_PER_MIN", 30),
		ViewManifest:    env("VIEW_MANIFEST", ""),
		RedisURL:        env("REDIS_URL", ""),
		DatabaseURL:     env("DATABASE_URL", ""),
	}
	if cfg.RedisURL == "" && cfg.DatabaseURL == "" {
		log.Println("[WARN] neither REDIS_URL nor DATABASE_URL set, tenant selections are in-memory only")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
func envDur(k string, def int) time.Duration {
	return time.Duration(envInt(k, def))
}
