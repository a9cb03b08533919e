package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap" // Use logger for loading errors
)

// DefaultRemoteLogURL is the evaluation service endpoint that receives remote log events.
const DefaultRemoteLogURL = "http://20.244.56.144/evaluation-service/logs"

// Config holds all configuration for the application
type Config struct {
	AppEnv            string
	AppName           string
	Port              string
	CORSAllowOrigins  string
	CORSAllowMethods  string
	CORSAllowHeaders  string
	LogFilePath       string
	LogLevel          string
	LogRotateInterval int // Hour
	LogMaxSize        int // MB
	LogMaxBackups     int
	LogMaxAge         int // Days
	LogCompress       bool

	// Request/response partition log
	RequestLogDir           string
	RequestLogQueueSize     int
	RequestLogRetentionDays int
	RetentionInterval       time.Duration

	// Dedicated SQLite diagnostic sink
	SQLiteLogEnabled bool
	SQLiteLogLevel   string
	SQLiteDBPath     string

	// Remote log shipping
	RemoteLogURL   string
	RemoteLogToken string
	RemoteLogStack string

	MetricsEnabled bool
	SeedDemoData   bool
}

// LoadConfig reads configuration from environment variables or .env file
func LoadConfig(logger *zap.Logger) (*Config, error) { // logger can be nil here
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "local"
	}

	envFileName := fmt.Sprintf(".env.%s", appEnv)
	if _, err := os.Stat(envFileName); err == nil {
		if err := godotenv.Load(envFileName); err != nil {
			if logger != nil {
				logger.Warn("Error loading .env file, continuing with environment variables", zap.String("file", envFileName), zap.Error(err))
			}
		} else if logger != nil {
			logger.Info("Loaded configuration", zap.String("file", envFileName))
		}
	} else if logger != nil {
		logger.Warn("No .env file found for environment, relying on environment variables or defaults", zap.String("environment", appEnv))
	}

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "local"),
		AppName:           getEnv("APP_NAME", "go-logapi"),
		Port:              getEnv("PORT", "3000"),
		LogFilePath:       getEnv("LOG_FILE_PATH", "./logs/diagnostics/app.log"),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogRotateInterval: getEnvAsInt("LOG_ROTATE_INTERVAL", 24),
		LogMaxSize:        getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups:     getEnvAsInt("LOG_MAX_BACKUPS", 5),
		LogMaxAge:         getEnvAsInt("LOG_MAX_AGE", 30),
		LogCompress:       getEnvAsBool("LOG_COMPRESS", false),

		RequestLogDir:           getEnv("REQUEST_LOG_DIR", "./logs"),
		RequestLogQueueSize:     getEnvAsInt("REQUEST_LOG_QUEUE_SIZE", 1024),
		RequestLogRetentionDays: getEnvAsInt("REQUEST_LOG_RETENTION_DAYS", 7),

		SQLiteLogEnabled: getEnvAsBool("SQLITE_LOG_ENABLED", false),
		SQLiteLogLevel:   strings.ToLower(getEnv("SQLITE_LOG_LEVEL", "warn")),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./logs/diagnostics/logs.db"),

		RemoteLogURL:   getEnv("REMOTE_LOG_URL", DefaultRemoteLogURL),
		RemoteLogToken: getEnv("REMOTE_LOG_TOKEN", ""),
		RemoteLogStack: strings.ToLower(getEnv("REMOTE_LOG_STACK", "backend")),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		SeedDemoData:   getEnvAsBool("SEED_DEMO_DATA", true),

		// Be permissive in local/dev, force explicit origins elsewhere
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", func() string {
			if appEnv == "local" || appEnv == "development" {
				return "*"
			}
			return ""
		}()),
		CORSAllowMethods: getEnv("CORS_ALLOW_METHODS", "GET,POST,HEAD,PUT,DELETE,PATCH"),
		CORSAllowHeaders: getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Type,Accept,Authorization"),
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "dpanic": true, "panic": true, "fatal": true}
	if !validLevels[cfg.LogLevel] {
		if logger != nil {
			logger.Warn("Invalid LOG_LEVEL specified, defaulting to 'info'", zap.String("invalidLevel", cfg.LogLevel))
		}
		cfg.LogLevel = "info"
	}
	if !validLevels[cfg.SQLiteLogLevel] {
		if logger != nil {
			logger.Warn("Invalid SQLITE_LOG_LEVEL specified, defaulting to 'warn'", zap.String("invalidLevel", cfg.SQLiteLogLevel))
		}
		cfg.SQLiteLogLevel = "warn"
	}

	cfg.RetentionInterval = time.Duration(getEnvAsInt("RETENTION_INTERVAL_MINUTES", 60)) * time.Minute

	if cfg.RequestLogRetentionDays < 0 {
		return nil, fmt.Errorf("REQUEST_LOG_RETENTION_DAYS must not be negative, got %d", cfg.RequestLogRetentionDays)
	}
	if cfg.RequestLogQueueSize <= 0 {
		return nil, fmt.Errorf("REQUEST_LOG_QUEUE_SIZE must be positive, got %d", cfg.RequestLogQueueSize)
	}
	// Events emitted by this server use backend-only packages (service, route).
	if cfg.RemoteLogStack != "backend" {
		return nil, fmt.Errorf("REMOTE_LOG_STACK must be 'backend', got %q", cfg.RemoteLogStack)
	}
	if cfg.RemoteLogToken == "" && logger != nil {
		logger.Warn("REMOTE_LOG_TOKEN is not set. Remote log events will be dropped.")
	}
	if cfg.AppEnv != "local" && cfg.AppEnv != "development" && (cfg.CORSAllowOrigins == "*" || cfg.CORSAllowOrigins == "") {
		if logger != nil {
			logger.Warn("CORS_ALLOW_ORIGINS is set to '*' or is empty in a non-local/dev environment. Set specific origins for production.")
		}
		return nil, fmt.Errorf("CORS_ALLOW_ORIGINS must be set explicitly in production environments")
	}

	return cfg, nil
}

// Helper function to get env var or default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get env var as int or default
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper function to get env var as bool or default
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
