package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/chainmall/authgate/core"
)

// Cognito holds the pre-provisioned secrets for the identity directory.
// ClientSecret feeds the per-request secret hash and must never be logged.
type Cognito struct {
	Region       string
	ClientID     string
	ClientSecret string
}

// Config is the startup configuration for the broker
type Config struct {
	Env          string
	Port         string
	RedisURL     string
	Cognito      Cognito
	ChallengeTTL time.Duration
}

// Load reads configuration from the environment (and an optional .env
// file) and validates the required directory secrets eagerly, so a
// misprovisioned instance fails at startup instead of per request.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		RedisURL: getEnv("REDIS_URL", ""),
		Cognito: Cognito{
			Region:       getEnv("COGNITO_REGION", "us-east-1"),
			ClientID:     os.Getenv("COGNITO_CLIENT_ID"),
			ClientSecret: os.Getenv("COGNITO_CLIENT_SECRET"),
		},
		ChallengeTTL: time.Duration(getEnvAsInt("CHALLENGE_TTL_SECONDS", 300)) * time.Second,
	}

	if cfg.Cognito.ClientID == "" {
		return nil, fmt.Errorf("%w: COGNITO_CLIENT_ID", core.ErrConfiguration)
	}
	if cfg.Cognito.ClientSecret == "" {
		return nil, fmt.Errorf("%w: COGNITO_CLIENT_SECRET", core.ErrConfiguration)
	}

	return cfg, nil
}

// IsProduction reports whether the broker runs with production hardening
// (secure cookies, machine-readable logs)
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
