package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/container"
)

// Config holds all configuration for the inspector process
type Config struct {
	// Observability
	LogLevel        string
	LogFile         string // Empty disables the file sink
	TracingEnabled  bool
	TracingEndpoint string
	TracingProtocol string // "grpc" or "http"

	// Parser settings
	ChunkSize          int    // Chunk size for primary logs
	ArchivedChunkSize  int    // Chunk size for archived logs
	TimeZone           string // IANA zone used for display timestamps; empty is local time
	SenderTimestampKey string

	// View settings
	PageSize        int
	SearchDebounce  time.Duration
	ScrollThreshold float64

	// Container layout
	PrimaryLogPath   string
	PrimaryLogPrefix string
	ArchivesPrefix   string

	// System details rules
	SysDetailsRulesPath string // Empty uses the built-in rules
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
		TracingEnabled:  getEnvBool("TRACING_ENABLED", false),
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4317"),
		TracingProtocol: strings.ToLower(getEnv("TRACING_PROTOCOL", "grpc")),

		ChunkSize:          getEnvInt("CHUNK_SIZE", 1_000_000),
		ArchivedChunkSize:  getEnvInt("ARCHIVED_CHUNK_SIZE", 100_000),
		TimeZone:           getEnv("TIME_ZONE", ""),
		SenderTimestampKey: getEnv("SENDER_TIMESTAMP_KEY", "senderTimestamp"),

		PageSize:        getEnvInt("PAGE_SIZE", 100),
		SearchDebounce:  time.Duration(getEnvInt("SEARCH_DEBOUNCE_MS", 300)) * time.Millisecond,
		ScrollThreshold: getEnvFloat("SCROLL_THRESHOLD", 1.5),

		PrimaryLogPath:   getEnvOptional("PRIMARY_LOG_PATH", `log\BVC.xml`),
		PrimaryLogPrefix: getEnvOptional("PRIMARY_LOG_PREFIX", `log\`),
		ArchivesPrefix:   getEnv("ARCHIVES_PREFIX", `log\Archives\`),

		SysDetailsRulesPath: getEnv("SYSDETAILS_RULES_PATH", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ChunkSize < 1 {
		return fmt.Errorf("CHUNK_SIZE must be at least 1")
	}
	if c.ArchivedChunkSize < 1 {
		return fmt.Errorf("ARCHIVED_CHUNK_SIZE must be at least 1")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE_MS must not be negative")
	}
	if c.ScrollThreshold <= 0 {
		return fmt.Errorf("SCROLL_THRESHOLD must be positive")
	}
	if c.TracingProtocol != "grpc" && c.TracingProtocol != "http" {
		return fmt.Errorf("TRACING_PROTOCOL must be grpc or http")
	}
	if c.PrimaryLogPath == "" && c.PrimaryLogPrefix == "" {
		return fmt.Errorf("one of PRIMARY_LOG_PATH or PRIMARY_LOG_PREFIX is required")
	}
	if c.ArchivesPrefix == "" {
		return fmt.Errorf("ARCHIVES_PREFIX is required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIME_ZONE is invalid: %w", err)
	}

	return nil
}

// ContainerLayout returns the container markers. An empty PrimaryLogPath
// selects the primary log by PrimaryLogPrefix.
func (c *Config) ContainerLayout() container.Layout {
	layout := container.DefaultLayout()
	layout.PrimaryPath = c.PrimaryLogPath
	layout.PrimaryPrefix = c.PrimaryLogPrefix
	layout.ArchivesPrefix = c.ArchivesPrefix
	return layout
}

// Location resolves TimeZone
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOptional is getEnv for settings where an explicitly empty value
// means "off" rather than "use the default"
func getEnvOptional(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
