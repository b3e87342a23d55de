// Package config reads service settings from the environment, loading a .env
// file first when one is present.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL        string
	DBMaxConns         int32
	ClerkSecretKey     string
	ClerkWebhookSecret string
	Port               string
	PublicBaseURL      string
	MetricsUser        string
	MetricsPass        string
	PprofSecret        string
	RateLimitRPS       float64
	RateLimitBurst     int
	GoogleFontsAPIKey  string
	RemoveBGAPIKey     string
}

// Load reads the configuration. Only DATABASE_URL is required here; commands
// that need more check for it themselves (see RequireClerk).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ClerkSecretKey:     os.Getenv("CLERK_SECRET_KEY"),
		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		Port:               getenv("PORT", "3333"),
		PublicBaseURL:      strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		MetricsUser:        os.Getenv("METRICS_USER"),
		MetricsPass:        os.Getenv("METRICS_PASS"),
		PprofSecret:        os.Getenv("PPROF_SECRET"),
		GoogleFontsAPIKey:  os.Getenv("GOOGLE_FONTS_API_KEY"),
		RemoveBGAPIKey:     os.Getenv("REMOVE_BG_API_KEY"),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	maxConns, err := intEnv("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	cfg.DBMaxConns = int32(maxConns)

	burst, err := intEnv("RATE_LIMIT_BURST", 30)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitBurst = burst

	rps := 5.0
	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		rps, err = strconv.ParseFloat(raw, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_RPS must be a positive number, got %q", raw)
		}
	}
	cfg.RateLimitRPS = rps

	return cfg, nil
}

// RequireClerk fails when the Clerk secret key or the webhook signing secret
// is missing.
func (c *Config) RequireClerk() error {
	if c.ClerkSecretKey == "" {
		return fmt.Errorf("CLERK_SECRET_KEY environment variable is not set")
	}
	if c.ClerkWebhookSecret == "" {
		return fmt.Errorf("CLERK_WEBHOOK_SECRET environment variable is not set")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}
