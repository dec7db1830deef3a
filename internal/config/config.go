package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
//
// The Redis settings are deliberately optional: when neither REDIS_URL nor
// REDIS_HOST is set the process runs in degraded mode, executing every
// notification job inline instead of queueing it.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Broker. RedisURL wins over the discrete host/port/password fields.
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Email provider
	ResendAPIKey string
	FromEmail    string
	FromName     string

	// Maximum email sends per second across both workers.
	EmailRateLimit int

	// Queue poll cadence for workers waiting on an empty lane.
	QueuePollInterval time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@dockwise.example"),
		FromName:     getEnv("FROM_NAME", "Dockwise Scheduling"),

		EmailRateLimit: getInt("EMAIL_RATE_LIMIT", 20),

		QueuePollInterval: getDuration("QUEUE_POLL_INTERVAL", 250*time.Millisecond),
	}, nil
}

// BrokerConfigured reports whether any Redis connection setting is present.
// Absence is a supported configuration, not an error.
func (c *Config) BrokerConfigured() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// RedisAddr returns the host:port form used when REDIS_URL is not set.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
