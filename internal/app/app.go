package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go-logapi/internal/bootstrap"
	"go-logapi/internal/config"
	"go-logapi/internal/database"
	"go-logapi/internal/logging"
	"go-logapi/internal/middleware"
	"go-logapi/internal/repositories"
	"go-logapi/internal/routes"
	"go-logapi/internal/utils"

	"github.com/DeRuina/timberjack"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewErrorHandler renders errors that escaped a handler. Unmatched routes get
// 404, everything else a generic 500 with the cause attached outside production.
func NewErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		lg := middleware.GetRequestFileLogger(c)
		code := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		fields := []zap.Field{
			zap.Int("status", code),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.String("ip", c.IP()),
			zap.Error(err),
		}

		switch {
		case code == fiber.StatusNotFound:
			lg.Warn("Route not found", fields...)
			return c.Status(code).JSON(fiber.Map{"error": "Route not found"})
		case code < fiber.StatusInternalServerError:
			lg.Warn("Request rejected", fields...)
			return c.Status(code).JSON(fiber.Map{"error": e.Message})
		}

		lg.Error("Unhandled error", fields...)
		resp := fiber.Map{"error": "Internal server error"}
		if cfg != nil && cfg.AppEnv != "production" {
			resp["detail"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
}

// NewFiberApp builds the Fiber application with its middleware chain and routes.
// The request recorder sits outside recover so panics are still recorded as 500s.
func NewFiberApp(cfg *config.Config, fileLogger, sqliteLogger *zap.Logger, components *bootstrap.AppComponents) *fiber.App {
	fileLogger.Info("Initializing Fiber application...")
	appFiber := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: NewErrorHandler(cfg),
	})

	appFiber.Use(middleware.RequestLoggers(fileLogger, sqliteLogger))
	appFiber.Use(middleware.RequestRecorder(components.RequestLogWriter, components.Metrics))
	appFiber.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.LogLevel == "debug",
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			middleware.GetRequestFileLogger(c).Error("Panic recovered", zap.Any("panic_value", e))
		},
	}))
	fileLogger.Info("Configuring CORS", zap.String("origins", cfg.CORSAllowOrigins), zap.String("methods", cfg.CORSAllowMethods), zap.String("headers", cfg.CORSAllowHeaders))
	appFiber.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: cfg.CORSAllowMethods,
		AllowHeaders: cfg.CORSAllowHeaders,
	}))
	appFiber.Use(fiberzap.New(fiberzap.Config{
		Logger: fileLogger,
		Fields: []string{"status", "method", "url", "ip", "latency", "error"},
		FieldsFunc: func(c *fiber.Ctx) []zap.Field {
			fields := []zap.Field{zap.String("log_type", "access")}
			if reqID := middleware.GetRequestID(c); reqID != "" {
				fields = append(fields, zap.String("request_id", reqID))
			}
			return fields
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))

	routes.SetupRoutes(appFiber, cfg, fileLogger, components)
	return appFiber
}

func newFileSyncer(cfg *config.Config) (zapcore.WriteSyncer, error) {
	logDir := filepath.Dir(cfg.LogFilePath)
	if logDir != "." && logDir != "/" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to ensure log directory %s exists: %w", logDir, err)
		}
	}
	return zapcore.AddSync(&timberjack.Logger{
		Filename:         cfg.LogFilePath,
		MaxSize:          cfg.LogMaxSize,
		MaxBackups:       cfg.LogMaxBackups,
		MaxAge:           cfg.LogMaxAge,
		Compress:         cfg.LogCompress,
		LocalTime:        true,
		RotationInterval: time.Duration(cfg.LogRotateInterval) * time.Hour,
	}), nil
}

// Run initializes and starts the application, blocking until shutdown.
func Run() {
	startedAt := time.Now()

	// --- 1. Configuration ---
	tempConfigLogger, _ := zap.NewProduction(zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	defer tempConfigLogger.Sync()

	cfg, err := config.LoadConfig(tempConfigLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- 2. Diagnostic loggers ---
	fileSyncer, err := newFileSyncer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	// The repository is created without a database so the SQLite core can be
	// built now; inserts fail softly until SetSqliteDB is called.
	logRepo := repositories.NewLogRepository(nil, tempConfigLogger)
	appLoggers, err := logging.InitializeLoggers(cfg, logRepo, fileSyncer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize application loggers: %v\n", err)
		os.Exit(1)
	}
	fileLogger := appLoggers.File
	sqliteLogger := appLoggers.SQLite
	logging.SetGlobalLoggers(fileLogger, sqliteLogger)
	if lr, ok := logRepo.(interface{ SetLogger(*zap.Logger) }); ok {
		lr.SetLogger(fileLogger)
	}
	utils.TraceConfigDetails(fileLogger, cfg)

	// --- 3. SQLite diagnostic sink ---
	var sqliteDB *sql.DB
	if cfg.SQLiteLogEnabled {
		sqliteDB, err = database.InitSQLite(cfg.SQLiteDBPath, fileLogger)
		if err != nil {
			fileLogger.Error("Failed to initialize SQLite diagnostic store; continuing without it", zap.Error(err))
		} else {
			logRepo.SetSqliteDB(sqliteDB)
			fileLogger.Info("SQLite diagnostic store attached to LogRepository.")
		}
	}

	// --- 4. Components, app and workers ---
	components, err := bootstrap.InitializeAppComponents(cfg, appLoggers.Combined(), sqliteDB, logRepo, startedAt)
	if err != nil {
		fileLogger.Fatal("Failed to initialize application components", zap.Error(err))
	}
	appFiber := NewFiberApp(cfg, fileLogger, sqliteLogger, components)

	components.RequestLogWriter.Start()
	components.RetentionProcessor.Start()

	// --- 5. Serve & graceful shutdown ---
	serverCtx, cancelServerCtx := context.WithCancel(context.Background())
	defer cancelServerCtx()
	serverStopped := make(chan struct{})

	go func() {
		defer close(serverStopped)
		listenAddr := ":" + cfg.Port
		fileLogger.Info(fmt.Sprintf("Completed initialization application in %d ms.", time.Since(startedAt).Milliseconds()))
		fileLogger.Info("Starting Fiber server...",
			zap.String("address", listenAddr),
			zap.Int("pid", os.Getpid()),
			zap.String("app_env", cfg.AppEnv),
			zap.String("request_log_dir", cfg.RequestLogDir),
		)
		if err := appFiber.Listen(listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fileLogger.Error("Server listener failed", zap.String("address", listenAddr), zap.Error(err))
			cancelServerCtx()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case s := <-sig:
		fileLogger.Info("Shutdown signal received.", zap.String("signal", s.String()))
	case <-serverCtx.Done():
		fileLogger.Info("Server context cancelled, initiating shutdown.")
	}

	fileLogger.Info("Initiating graceful shutdown...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancelShutdown()

	if err := appFiber.ShutdownWithContext(shutdownCtx); err != nil {
		fileLogger.Error("Fiber server shutdown failed", zap.Error(err))
	} else {
		fileLogger.Info("Fiber server gracefully stopped.")
	}
	<-serverStopped

	// No more requests can enqueue entries past this point.
	components.RequestLogWriter.Stop()
	components.RetentionProcessor.Stop()
	fileLogger.Info("Waiting for in-flight remote log submissions...")
	components.RemoteLog.Wait()

	if errSync := fileLogger.Sync(); errSync != nil {
		errMsg := errSync.Error()
		if !strings.Contains(errMsg, "handle is invalid") && !strings.Contains(errMsg, "sync /dev/stdout") {
			fmt.Fprintf(os.Stderr, "[WARN] Error syncing file/console logger: %v\n", errSync)
		}
	}
	if sqliteDB != nil {
		if errClose := sqliteDB.Close(); errClose != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] Error closing SQLite database: %v\n", errClose)
		} else {
			fmt.Println("[INFO] SQLite database connection closed.")
		}
	}
	fmt.Println("[INFO] Application shutdown complete.")
}
