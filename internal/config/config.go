package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds construction settings for a result backend instance
type Config struct {
	Redis   RedisConfig
	Backend BackendConfig
	Logging LoggingConfig
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	// ClusterAddrs lists cluster entry points. When non-empty, the
	// cluster backend is used and Host/Port/DB are ignored.
	ClusterAddrs []string
}

// BackendConfig holds result-backend behavior settings
type BackendConfig struct {
	// Keep entries readable after a successful read
	KeepResults bool

	// Maximum concurrently held store connections
	MaxPoolSize int

	// How long a caller waits for a free connection
	Timeout time.Duration

	// Retention window for stored results; 0 keeps them until read or
	// forever
	ResultTTL time.Duration

	// Namespace prefix for result keys
	KeyPrefix string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		Backend: BackendConfig{
			KeepResults: true,
			MaxPoolSize: 10,
			Timeout:     10 * time.Second,
			ResultTTL:   0,
			KeyPrefix:   "taskiq:result:",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// FromEnv returns the default configuration overridden from the
// environment. A .env file in the working directory is loaded first if
// present.
func FromEnv() *Config {
	_ = godotenv.Load()

	cfg := Default()

	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnvInt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	if addrs := getEnv("REDIS_CLUSTER_ADDRS", ""); addrs != "" {
		cfg.Redis.ClusterAddrs = splitAddrs(addrs)
	}

	cfg.Backend.KeepResults = getEnvBool("RESULT_KEEP_RESULTS", cfg.Backend.KeepResults)
	cfg.Backend.MaxPoolSize = getEnvInt("RESULT_MAX_POOL_SIZE", cfg.Backend.MaxPoolSize)
	cfg.Backend.Timeout = getEnvDuration("RESULT_TIMEOUT", cfg.Backend.Timeout)
	cfg.Backend.ResultTTL = getEnvDuration("RESULT_TTL", cfg.Backend.ResultTTL)
	cfg.Backend.KeyPrefix = getEnv("RESULT_KEY_PREFIX", cfg.Backend.KeyPrefix)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	return cfg
}

// RedisAddr returns the full Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Redis.Host == "" && len(c.Redis.ClusterAddrs) == 0 {
		return fmt.Errorf("redis host cannot be empty")
	}
	if c.Backend.MaxPoolSize < 1 {
		return fmt.Errorf("max pool size must be at least 1")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Backend.ResultTTL < 0 {
		return fmt.Errorf("result TTL cannot be negative")
	}
	return nil
}

func splitAddrs(s string) []string {
	parts := strings.Split(s, ",")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
