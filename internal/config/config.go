package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port                       string
	LogLevel                   string
	Environment                string
	SettingsPath               string
	TaskWorkerCount            string
	TaskQueueBufferSize        string
	LookupCacheTTL             string
	LookupCacheCleanupInterval string
	MetricsExporter            string
	MetricsAddr                string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() *Config {
	// Load .env file if it exists
	// This will not override existing environment variables
	err := godotenv.Load()
	if err != nil {
		slog.Warn("Could not load .env file, continuing with system environment variables only", "error", err)
	} else {
		slog.Info("Successfully loaded .env file")
	}

	config := &Config{
		Port:                       getEnvWithDefault("PORT", "8080"),
		LogLevel:                   getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:                getEnvWithDefault("ENVIRONMENT", "development"),
		SettingsPath:               getEnvWithDefault("SETTINGS_PATH", "data/settings.json"),
		TaskWorkerCount:            getEnvWithDefault("TASK_WORKER_COUNT", "1"),
		TaskQueueBufferSize:        getEnvWithDefault("TASK_QUEUE_BUFFER_SIZE", "100"),
		LookupCacheTTL:             getEnvWithDefault("LOOKUP_CACHE_TTL", "5m"),
		LookupCacheCleanupInterval: getEnvWithDefault("LOOKUP_CACHE_CLEANUP_INTERVAL", "1m"),
		MetricsExporter:            getEnvWithDefault("METRICS_EXPORTER", ""),
		MetricsAddr:                getEnvWithDefault("METRICS_ADDR", ":9080"),
	}

	SetupLogging(config.LogLevel)

	slog.Info("Configuration loaded",
		"port", config.Port,
		"environment", config.Environment,
		"logLevel", config.LogLevel,
		"settingsPath", config.SettingsPath,
		"taskWorkerCount", config.TaskWorkerCount,
		"taskQueueBufferSize", config.TaskQueueBufferSize,
		"lookupCacheTTL", config.LookupCacheTTL,
		"lookupCacheCleanupInterval", config.LookupCacheCleanupInterval,
		"metricsExporter", config.MetricsExporter)

	return config
}

// SetupLogging configures the default slog logger for the given level
func SetupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
