package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Open Government Data platform
	OpenDataURL    string
	OpenDataAPIKey string

	// Ingestion
	StateFilter      string
	FinYears         []string
	FetchLimit       int
	FetchRetries     int
	FetchRetryDelay  time.Duration
	FetchConcurrency int

	// Cache
	CacheSize int
	CacheTTL  time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/nregadash.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "nregadash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "data_refresh"),

		OpenDataURL:    getEnv("OPEN_DATA_URL", "https://api.data.gov.in/resource/ee03643a-ee4c-48c2-ac30-9f2ff26ab722"),
		OpenDataAPIKey: getEnv("OPEN_DATA_API_KEY", ""),

		StateFilter:      getEnv("STATE_FILTER", "UTTAR PRADESH"),
		FinYears:         getEnvList("FIN_YEARS", []string{"2023-2024"}),
		FetchLimit:       getEnvInt("FETCH_LIMIT", 5000),
		FetchRetries:     getEnvInt("FETCH_RETRIES", 5),
		FetchRetryDelay:  getEnvDuration("FETCH_RETRY_DELAY", 2*time.Second),
		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 2),

		CacheSize: getEnvInt("CACHE_SIZE", 256),
		CacheTTL:  getEnvDuration("CACHE_TTL", 15*time.Minute),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	// AMQP is optional; when set it must be coherent
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.OpenDataURL == "" {
		errors = append(errors, "open data URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.OpenDataURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid open data URL '%s': %v", c.OpenDataURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid open data URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if len(c.FinYears) == 0 {
		errors = append(errors, "at least one financial year must be configured")
	}
	for _, year := range c.FinYears {
		if !validFinYear(year) {
			errors = append(errors, fmt.Sprintf("invalid financial year '%s': must look like 2023-2024", year))
		}
	}

	if c.FetchLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid fetch limit %d: must be at least 1", c.FetchLimit))
	} else if c.FetchLimit > 10000 {
		errors = append(errors, fmt.Sprintf("invalid fetch limit %d: must be at most 10000", c.FetchLimit))
	}

	if c.FetchRetries < 1 {
		errors = append(errors, fmt.Sprintf("invalid fetch retries %d: must be at least 1", c.FetchRetries))
	}

	if c.FetchRetryDelay < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid fetch retry delay %v: must be at least 100ms", c.FetchRetryDelay))
	}

	if c.FetchConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid fetch concurrency %d: must be at least 1", c.FetchConcurrency))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}

	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// validFinYear accepts the NNNN-NNNN shape the open data platform uses
func validFinYear(year string) bool {
	parts := strings.Split(year, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 4 {
		return false
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return end == start+1
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
