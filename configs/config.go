package configs

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Quote    QuoteConfig
	Session  SessionConfig
	Trading  TradingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port     string
	OpsPort  string
	Env      string
	Timezone string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration. An empty URL disables the quote cache.
type RedisConfig struct {
	URL string
}

// QuoteConfig holds quote provider configuration
type QuoteConfig struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// TradingConfig holds account defaults
type TradingConfig struct {
	InitialCash decimal.Decimal
}

// Load loads configuration from environment variables
func Load() *Config {
	env := getEnv("GO_ENV", "development")
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			OpsPort:  getEnv("OPS_PORT", "9090"),
			Env:      env,
			Timezone: getEnv("TZ", "UTC"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Quote: QuoteConfig{
			APIKey:   getEnv("API_KEY", ""),
			BaseURL:  getEnv("QUOTE_BASE_URL", "https://cloud.iexapis.com/stable"),
			Timeout:  getDuration("QUOTE_TIMEOUT", 10*time.Second),
			CacheTTL: getDuration("QUOTE_CACHE_TTL", 5*time.Minute),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "papertrade-dev-secret-change-me"),
			TTL:    getDuration("SESSION_TTL", 24*time.Hour),
		},
		Trading: TradingConfig{
			InitialCash: getDecimal("INITIAL_CASH", decimal.NewFromInt(10000)),
		},
	}
	cfg.Session.Secure = cfg.IsProduction()
	return cfg
}

// Validate reports missing mandatory settings
func (c *Config) Validate() error {
	if c.Quote.APIKey == "" {
		return errors.New("API_KEY not set")
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL not set")
	}
	return nil
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("WARNING: Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() {
		log.Printf("WARNING: Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
