package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all client configuration
type Config struct {
	// Client
	Environment    string
	BaseURL        string
	RequestTimeout time.Duration

	// Secure storage
	SecureStorePath string
	SecureStoreKey  string

	// Cache (optional Redis)
	RedisURL     string
	FeedCacheTTL time.Duration

	// Observability
	ZipkinURL   string
	MetricsAddr string

	// Media
	MediaPrefetchConcurrency int

	// Mock backend
	MockPort          string
	MockPageSize      int
	MockSigningSecret string
	MockLogRequests   bool
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// Client
		Environment:    getEnv("ENVIRONMENT", "development"),
		BaseURL:        getEnv("API_BASE_URL", "http://localhost:8080"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 15*time.Second),

		// Secure storage
		SecureStorePath: getEnv("SECURE_STORE_PATH", "./.risus/secure.db"),
		SecureStoreKey:  getEnv("SECURE_STORE_KEY", "risus-dev-passphrase"),

		// Cache
		RedisURL:     getEnv("REDIS_URL", ""),
		FeedCacheTTL: getDuration("FEED_CACHE_TTL", 10*time.Minute),

		// Observability
		ZipkinURL:   getEnv("ZIPKIN_URL", ""),
		MetricsAddr: getEnv("METRICS_ADDR", ""),

		// Media
		MediaPrefetchConcurrency: getIntEnv("MEDIA_PREFETCH_CONCURRENCY", 4),

		// Mock backend
		MockPort:          getEnv("MOCK_PORT", "8080"),
		MockPageSize:      getIntEnv("MOCK_PAGE_SIZE", 10),
		MockSigningSecret: getEnv("MOCK_SIGNING_SECRET", "risus-mock-signing-key"),
		MockLogRequests:   getBoolEnv("MOCK_LOG_REQUESTS", true),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.SecureStoreKey == "" || c.SecureStoreKey == "risus-dev-passphrase" {
		if c.Environment == "production" {
			return fmt.Errorf("SECURE_STORE_KEY must be set in production")
		}
	}
	if c.MediaPrefetchConcurrency <= 0 {
		c.MediaPrefetchConcurrency = 4
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
