package bootstrap

import (
	"database/sql"
	"time"

	"go-logapi/internal/config"
	"go-logapi/internal/handlers"
	"go-logapi/internal/logging"
	"go-logapi/internal/metrics"
	"go-logapi/internal/remotelog"
	"go-logapi/internal/repositories"
	"go-logapi/internal/services"

	"go.uber.org/zap"
)

// AppComponents holds the initialized handlers, background workers and repositories.
type AppComponents struct {
	UserHandler   *handlers.UserHandler
	PostHandler   *handlers.PostHandler
	LogHandler    *handlers.LogHandler
	SystemHandler *handlers.SystemHandler

	RequestLogWriter   *logging.RequestLogWriter
	RetentionProcessor *logging.RetentionProcessor
	RemoteLog          *remotelog.Client
	Metrics            *metrics.Collector

	Store          *repositories.MemoryStore
	RequestLogRepo repositories.RequestLogRepository
	LogRepo        repositories.LogRepository
}

// InitializeAppComponents creates and wires repositories, services, handlers
// and background workers. sqliteDB is nil when the diagnostic sink is disabled.
func InitializeAppComponents(
	cfg *config.Config,
	logger *zap.Logger,
	sqliteDB *sql.DB,
	logRepo repositories.LogRepository,
	startedAt time.Time,
) (*AppComponents, error) {
	logger.Info("Initializing application components: Repositories, Services, Handlers, Workers...")

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("logapi")
	}

	// --- Repositories ---
	store := repositories.NewMemoryStore()
	if cfg.SeedDemoData {
		store.Seed()
		logger.Info("Demo data seeded into the in-memory store")
	}
	requestLogRepo := repositories.NewFileRequestLogRepository(cfg.RequestLogDir, logger)
	var diagnostics repositories.LogRepository
	if sqliteDB != nil {
		diagnostics = logRepo
	}
	logger.Info("Repositories initialized.")

	// --- Remote log client ---
	remote := remotelog.NewClient(remotelog.Options{
		Endpoint: cfg.RemoteLogURL,
		Token:    cfg.RemoteLogToken,
		Stack:    remotelog.Stack(cfg.RemoteLogStack),
	}, logger, collector)
	if exp, ok := remotelog.TokenExpiry(cfg.RemoteLogToken); ok {
		if time.Until(exp) <= 0 {
			logger.Warn("REMOTE_LOG_TOKEN has expired; remote log events will be rejected", zap.Time("expiredAt", exp))
		} else {
			logger.Info("Remote log credential loaded", zap.Time("expiresAt", exp))
		}
	}

	// --- Services ---
	userService := services.NewUserService(store, logger, remote)
	postService := services.NewPostService(store, store, logger, remote)
	statsService := services.NewStatsService(store, store, startedAt, cfg.AppEnv)
	requestLogService := services.NewRequestLogService(requestLogRepo, diagnostics, logger, collector)
	logger.Info("Services initialized.")

	// --- Handlers ---
	components := &AppComponents{
		UserHandler:   handlers.NewUserHandler(userService),
		PostHandler:   handlers.NewPostHandler(postService),
		LogHandler:    handlers.NewLogHandler(requestLogService),
		SystemHandler: handlers.NewSystemHandler(statsService, remote, sqliteDB),

		RequestLogWriter: logging.NewRequestLogWriter(requestLogRepo, cfg.RequestLogQueueSize, logger, collector),
		RetentionProcessor: logging.NewRetentionProcessor(requestLogRepo, diagnostics,
			cfg.RequestLogRetentionDays, cfg.RetentionInterval, logger, collector.AddPartitionsRemoved),
		RemoteLog: remote,
		Metrics:   collector,

		Store:          store,
		RequestLogRepo: requestLogRepo,
		LogRepo:        logRepo,
	}
	logger.Info("Application components initialization complete.")
	return components, nil
}
