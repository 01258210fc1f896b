// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Event feed modes. The feed is where catalog change notifications come
// from: the local database's notify channel, or a remote server's event
// stream when running against a hosted backend.
const (
	FeedPostgres = "postgres"
	FeedSSE      = "sse"
	FeedNone     = "none"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// UseMock serves the embedded catalog dataset instead of the database.
	UseMock bool

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// PublicBaseURL is the URL this deployment's upstream API is reachable
	// at, for follower instances that consume a remote backend.
	PublicBaseURL string

	// Event feed
	EventFeed string // FeedPostgres, FeedSSE or FeedNone
	EventsURL string // upstream stream URL when EventFeed is FeedSSE

	// S3-compatible object storage for product images
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string // optional CDN/direct URL for uploaded files
}

// Load reads configuration from the environment, applying defaults for
// development where appropriate. A .env file in the working directory is
// loaded first if present. Returns an error if critical values are missing
// in production mode.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Host:    envOrDefault("APP_HOST", "0.0.0.0"),
		Port:    envOrDefault("APP_PORT", "8080"),
		Env:     envOrDefault("APP_ENV", "development"),
		UseMock: boolEnv("USE_MOCK"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "autovitrine"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "autovitrine"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),

		EventFeed: envOrDefault("EVENT_FEED", FeedPostgres),
		EventsURL: os.Getenv("EVENTS_URL"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "eu-central"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "autovitrine-images"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	if cfg.UseMock {
		// The embedded dataset has no change feed.
		cfg.EventFeed = FeedNone
	}

	switch cfg.EventFeed {
	case FeedPostgres, FeedNone:
	case FeedSSE:
		if cfg.EventsURL == "" && cfg.PublicBaseURL != "" {
			cfg.EventsURL = strings.TrimRight(cfg.PublicBaseURL, "/") + "/api/v1/events/products"
		}
		if cfg.EventsURL == "" {
			return nil, fmt.Errorf("EVENTS_URL or PUBLIC_BASE_URL must be set when EVENT_FEED=sse")
		}
	default:
		return nil, fmt.Errorf("invalid EVENT_FEED %q (want postgres, sse or none)", cfg.EventFeed)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" && !cfg.UseMock {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// boolEnv reads an environment variable as a boolean. "1", "true", "yes"
// and "on" count as true, case-insensitively.
func boolEnv(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
