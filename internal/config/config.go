package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Remote search and sentiment service
	APIBaseURL     string
	RequestTimeout time.Duration

	// Durability layer: "badger", "azure" or "memory"
	StorageBackend   string
	DataDir          string
	StorageAccount   string
	StorageContainer string

	// Notification queue
	NotificationTTL       time.Duration
	AnalysisCacheCapacity int

	// Backend health probe
	HealthCheckSchedule string

	// Optional outbound channels
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:5000/api"),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 30*time.Second),

		StorageBackend:   getEnv("STORAGE_BACKEND", "badger"),
		DataDir:          getEnv("DATA_DIR", ".brand-pulse"),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "brand-pulse"),

		NotificationTTL:       getDurationEnv("NOTIFICATION_TTL", 5*time.Second),
		AnalysisCacheCapacity: getIntEnv("ANALYSIS_CACHE_CAPACITY", 0),

		HealthCheckSchedule: getEnv("HEALTH_CHECK_SCHEDULE", "@every 30s"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case "badger", "memory":
	case "azure":
		if c.StorageAccount == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required when STORAGE_BACKEND is 'azure'")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'badger', 'azure' or 'memory'")
	}

	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.AnalysisCacheCapacity < 0 {
		return fmt.Errorf("ANALYSIS_CACHE_CAPACITY must not be negative")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// EmailEnabled reports whether exports can be mailed
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
