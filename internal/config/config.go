package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Scraper  ScraperConfig
	Output   OutputConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Status   StatusConfig
	Logging  LoggingConfig
}

type ScraperConfig struct {
	Workers      int
	Pacing       time.Duration
	FetchTimeout time.Duration
	MaxRetries   int
	RetryWait    time.Duration
	UserAgent    string
}

type OutputConfig struct {
	Dir           string
	Format        string
	SnapshotPages int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// Enabled reports whether a records sink was configured. An empty host means
// the scanner runs without Postgres.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QuoteTTL time.Duration
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type StatusConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

func (s StatusConfig) Enabled() bool {
	return s.Addr != ""
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Scraper: ScraperConfig{
			Workers:      getIntOrDefault("SCRAPER_WORKERS", 5),
			Pacing:       getDurationOrDefault("SCRAPER_PACING", 1*time.Second),
			FetchTimeout: getDurationOrDefault("SCRAPER_FETCH_TIMEOUT", 10*time.Second),
			MaxRetries:   getIntOrDefault("SCRAPER_MAX_RETRIES", 3),
			RetryWait:    getDurationOrDefault("SCRAPER_RETRY_WAIT", 1*time.Second),
			UserAgent:    getEnvOrDefault("SCRAPER_USER_AGENT", "Mozilla/5.0"),
		},
		Output: OutputConfig{
			Dir:           getEnvOrDefault("OUTPUT_DIR", "HIBID_AUCTIONS"),
			Format:        getEnvOrDefault("OUTPUT_FORMAT", "xlsx"),
			SnapshotPages: getIntOrDefault("OUTPUT_SNAPSHOT_PAGES", 3),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", ""),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "hibid_scanner"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns: getIntOrDefault("DB_MAX_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", ""),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			QuoteTTL: getDurationOrDefault("REDIS_QUOTE_TTL", 12*time.Hour),
		},
		Status: StatusConfig{
			Addr:            getEnvOrDefault("STATUS_ADDR", ""),
			ShutdownTimeout: getDurationOrDefault("STATUS_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.Workers < 1 {
		return fmt.Errorf("SCRAPER_WORKERS must be at least 1")
	}

	if c.Scraper.Pacing < 0 {
		return fmt.Errorf("SCRAPER_PACING cannot be negative")
	}

	if c.Scraper.FetchTimeout <= 0 {
		return fmt.Errorf("SCRAPER_FETCH_TIMEOUT must be positive")
	}

	if c.Scraper.MaxRetries < 0 {
		return fmt.Errorf("SCRAPER_MAX_RETRIES cannot be negative")
	}

	if c.Output.Format != "xlsx" && c.Output.Format != "csv" {
		return fmt.Errorf("OUTPUT_FORMAT must be xlsx or csv, got %q", c.Output.Format)
	}

	if c.Output.SnapshotPages < 1 {
		return fmt.Errorf("OUTPUT_SNAPSHOT_PAGES must be at least 1")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
