package config

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	ProcessTimeout     time.Duration
	MaxRequestBodySize int64
	Workers            int

	LogLevel  string
	LogFormat string

	AzureAccountName      string
	AzureAccountKey       string
	AzureConnectionString string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether enough credentials are present to build a blob client.
func (c *Config) AzureEnabled() bool {
	if c.AzureConnectionString != "" {
		return true
	}
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:                  getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                  getEnvOrDefault("PORT", "8080"),
		RequestTimeout:        parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		ImageFetchTimeout:     parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		ProcessTimeout:        parseDurationOrDefault("PROCESS_TIMEOUT", 45*time.Second),
		MaxRequestBodySize:    parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 32*1024*1024), // 32MB
		Workers:               int(parseIntOrDefault("WORKERS", int64(runtime.NumCPU()))),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:             getEnvOrDefault("LOG_FORMAT", "json"),
		AzureAccountName:      os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:       os.Getenv("AZURE_STORAGE_KEY"),
		AzureConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that defaults cannot fix on their own.
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.ProcessTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, process=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.ProcessTimeout)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be > 0 (got %d)", c.Workers)
	}
	if (c.AzureAccountName == "") != (c.AzureAccountKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
