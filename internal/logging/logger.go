package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go-logapi/internal/config"
	"go-logapi/internal/models"
	"go-logapi/internal/repositories"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const sqliteWriteTimeout = 5 * time.Second

var (
	globalFileLogger   *zap.Logger
	globalSQLiteLogger *zap.Logger // never nil once set
	globalLoggersMu    sync.RWMutex
)

// AppLoggers holds the different logger instances for the application.
type AppLoggers struct {
	File   *zap.Logger // console + rotating diagnostic file
	SQLite *zap.Logger // tbl_log sink, a no-op when disabled
}

// Combined returns a logger that writes to both sinks.
func (l *AppLoggers) Combined() *zap.Logger {
	if l.SQLite == nil {
		return l.File
	}
	return zap.New(zapcore.NewTee(l.File.Core(), l.SQLite.Core()), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func bracketLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + level.CapitalString() + "]")
}

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel:  "\x1b[35m",
	zapcore.InfoLevel:   "\x1b[32m",
	zapcore.WarnLevel:   "\x1b[33m",
	zapcore.ErrorLevel:  "\x1b[31m",
	zapcore.DPanicLevel: "\x1b[31m",
	zapcore.PanicLevel:  "\x1b[31m",
	zapcore.FatalLevel:  "\x1b[31m",
}

func bracketColorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	color, ok := levelColors[level]
	if !ok {
		bracketLevelEncoder(level, enc)
		return
	}
	enc.AppendString(color + "[" + level.CapitalString() + "]\x1b[0m")
}

// CreateFileConsoleEncoderConfigs returns the console (colored) and file encoder configs.
func CreateFileConsoleEncoderConfigs() (zapcore.EncoderConfig, zapcore.EncoderConfig) {
	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.EncodeLevel = bracketColorLevelEncoder
	consoleEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEncoderCfg.EncodeCaller = zapcore.ShortCallerEncoder

	fileEncoderCfg := zap.NewProductionEncoderConfig()
	fileEncoderCfg.EncodeLevel = bracketLevelEncoder
	fileEncoderCfg.TimeKey = "timestamp"
	fileEncoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	fileEncoderCfg.EncodeCaller = zapcore.ShortCallerEncoder

	return consoleEncoderCfg, fileEncoderCfg
}

func parseLevel(raw string, fallback zapcore.Level, name string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Invalid %s '%s', defaulting to %s: %v\n", name, raw, fallback, err)
		return fallback
	}
	return lvl
}

// InitializeLoggers builds the console/file diagnostic logger and, when enabled,
// the SQLite logger backed by logRepo.
func InitializeLoggers(cfg *config.Config, logRepo repositories.LogRepository, fileSyncer zapcore.WriteSyncer) (*AppLoggers, error) {
	if fileSyncer == nil {
		return nil, fmt.Errorf("file syncer is required")
	}
	appLoggers := &AppLoggers{}

	fileLogLevel := parseLevel(cfg.LogLevel, zapcore.InfoLevel, "LOG_LEVEL")
	consoleEncoderCfg, fileEncoderCfg := CreateFileConsoleEncoderConfigs()

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderCfg), zapcore.Lock(os.Stdout), fileLogLevel)
	fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(fileEncoderCfg), fileSyncer, fileLogLevel)

	appLoggers.File = zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	appLoggers.File.Info("Diagnostic logger initialized",
		zap.String("app", cfg.AppName),
		zap.String("environment", cfg.AppEnv),
		zap.String("effectiveLevel", fileLogLevel.String()),
		zap.String("logFile", cfg.LogFilePath),
	)

	if cfg.SQLiteLogEnabled && logRepo != nil {
		sqliteLogLevel := parseLevel(cfg.SQLiteLogLevel, zapcore.WarnLevel, "SQLITE_LOG_LEVEL")
		appLoggers.SQLite = zap.New(NewSQLiteCore(sqliteLogLevel, logRepo), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
		appLoggers.File.Info("SQLite diagnostic logger initialized", zap.String("effectiveLevel", sqliteLogLevel.String()))
	} else {
		appLoggers.File.Info("SQLite diagnostic logger is disabled by configuration.")
		appLoggers.SQLite = zap.NewNop()
	}

	return appLoggers, nil
}

// sqliteCore implements zapcore.Core and writes entries to tbl_log through a LogRepository.
type sqliteCore struct {
	zapcore.LevelEnabler
	repo   repositories.LogRepository
	fields []zapcore.Field // added via logger.With()
}

// NewSQLiteCore creates a core that stores each entry as a tbl_log row.
func NewSQLiteCore(enab zapcore.LevelEnabler, repo repositories.LogRepository) zapcore.Core {
	return &sqliteCore{LevelEnabler: enab, repo: repo}
}

func (c *sqliteCore) With(fields []zapcore.Field) zapcore.Core {
	return &sqliteCore{
		LevelEnabler: c.LevelEnabler,
		repo:         c.repo,
		fields:       append(append([]zapcore.Field(nil), c.fields...), fields...),
	}
}

func (c *sqliteCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *sqliteCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	entry := models.LogEntry{
		Timestamp: ent.Time,
		Level:     ent.Level.String(),
		Message:   ent.Message,
		Fields:    "{}",
	}
	if ent.Caller.Defined {
		enc.Fields["caller"] = ent.Caller.TrimmedPath()
	}
	if len(enc.Fields) > 0 {
		b, err := json.Marshal(enc.Fields)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to marshal log fields for SQLite: %v\n", err)
			b, _ = json.Marshal(map[string]string{"marshal_error": err.Error()})
		}
		entry.Fields = string(b)
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqliteWriteTimeout)
	defer cancel()
	if err := c.repo.InsertLog(ctx, entry); err != nil {
		// Logging through zap here would recurse into this core.
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to insert log entry into SQLite: %v\n", err)
	}
	return nil
}

func (c *sqliteCore) Sync() error {
	return nil
}

// SetGlobalLoggers sets the global logger instances.
func SetGlobalLoggers(fileLogger, sqliteLogger *zap.Logger) {
	globalLoggersMu.Lock()
	defer globalLoggersMu.Unlock()
	globalFileLogger = fileLogger
	if sqliteLogger == nil {
		sqliteLogger = zap.NewNop()
	}
	globalSQLiteLogger = sqliteLogger
}

// GetFileLogger returns the global console/file logger.
func GetFileLogger() *zap.Logger {
	globalLoggersMu.RLock()
	l := globalFileLogger
	globalLoggersMu.RUnlock()

	if l == nil {
		fallbackLogger, _ := zap.NewProduction()
		fallbackLogger.Warn("Global file/console logger accessed before being set!")
		return fallbackLogger
	}
	return l
}

// GetSQLiteLogger returns the global SQLite logger, a no-op when disabled.
func GetSQLiteLogger() *zap.Logger {
	globalLoggersMu.RLock()
	l := globalSQLiteLogger
	globalLoggersMu.RUnlock()

	if l == nil {
		return zap.NewNop()
	}
	return l
}
