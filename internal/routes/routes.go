package routes

import (
	"go-logapi/internal/bootstrap"
	"go-logapi/internal/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupRoutes configures the application routes.
func SetupRoutes(app *fiber.App, cfg *config.Config, logger *zap.Logger, components *bootstrap.AppComponents) {
	logger.Info("Setting up application routes...")

	app.Get("/health", components.SystemHandler.Health)

	if cfg.MetricsEnabled && components.Metrics != nil {
		app.Get("/metrics", components.Metrics.Handler())
		logger.Info("Prometheus metrics exposed", zap.String("path", "/metrics"))
	}

	api := app.Group("/api")
	api.Get("/", components.SystemHandler.Docs)
	api.Get("/stats", components.SystemHandler.Stats)
	components.UserHandler.SetupUserRoutes(api)
	components.PostHandler.SetupPostRoutes(api)
	components.LogHandler.SetupLogRoutes(api)
}
