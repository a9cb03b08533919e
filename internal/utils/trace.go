package utils

import (
	"fmt"

	"go-logapi/internal/config"

	"go.uber.org/zap"
)

// TraceConfigDetails logs the effective configuration at debug level with secrets masked.
func TraceConfigDetails(logger *zap.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		fmt.Println("[WARN] logger or config is nil in TraceConfigDetails")
		return
	}
	logger.Debug("Loaded application configuration details",
		zap.String("AppEnv", cfg.AppEnv),
		zap.String("AppName", cfg.AppName),
		zap.String("Port", cfg.Port),
		zap.String("LogFilePath", cfg.LogFilePath),
		zap.String("LogLevel", cfg.LogLevel),
		zap.Int("LogRotateIntervalHours", cfg.LogRotateInterval),
		zap.Int("LogMaxSizeMB", cfg.LogMaxSize),
		zap.Int("LogMaxBackups", cfg.LogMaxBackups),
		zap.Int("LogMaxAgeDays", cfg.LogMaxAge),
		zap.Bool("LogCompress", cfg.LogCompress),
		zap.String("RequestLogDir", cfg.RequestLogDir),
		zap.Int("RequestLogQueueSize", cfg.RequestLogQueueSize),
		zap.Int("RequestLogRetentionDays", cfg.RequestLogRetentionDays),
		zap.Duration("RetentionInterval", cfg.RetentionInterval),
		zap.Bool("SQLiteLog_Enabled", cfg.SQLiteLogEnabled),
		zap.String("SQLiteLog_Level", cfg.SQLiteLogLevel),
		zap.String("SQLiteDBPath", cfg.SQLiteDBPath),
		zap.String("RemoteLogURL", MaskURLCredentials(cfg.RemoteLogURL)),
		zap.String("RemoteLogToken", MaskSecret(cfg.RemoteLogToken)),
		zap.String("RemoteLogStack", cfg.RemoteLogStack),
		zap.Bool("MetricsEnabled", cfg.MetricsEnabled),
		zap.Bool("SeedDemoData", cfg.SeedDemoData),
		zap.String("CORS_AllowOrigins", cfg.CORSAllowOrigins),
		zap.String("CORS_AllowMethods", cfg.CORSAllowMethods),
		zap.String("CORS_AllowHeaders", cfg.CORSAllowHeaders),
	)
}
