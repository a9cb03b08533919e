package handlers

import (
	"context"
	"database/sql"
	"time"

	mw "go-logapi/internal/middleware"
	"go-logapi/internal/remotelog"
	"go-logapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SystemHandler serves health, statistics and the endpoint index.
type SystemHandler struct {
	stats    *services.StatsService
	events   services.EventLogger
	sqliteDB *sql.DB // nil when the diagnostic sink is disabled
}

// NewSystemHandler creates a new SystemHandler. events and sqliteDB may be nil.
func NewSystemHandler(stats *services.StatsService, events services.EventLogger, sqliteDB *sql.DB) *SystemHandler {
	return &SystemHandler{stats: stats, events: events, sqliteDB: sqliteDB}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	if h.events != nil {
		h.events.Log(remotelog.LevelInfo, remotelog.PackageRoute, "Health check endpoint accessed")
	}

	deps := fiber.Map{"sqlite": "disabled"}
	if h.sqliteDB != nil {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()
		if err := h.sqliteDB.PingContext(pingCtx); err != nil {
			deps["sqlite"] = "disconnected"
			mw.GetRequestFileLogger(c).Warn("Health check: SQLite ping failed", zap.Error(err))
		} else {
			deps["sqlite"] = "connected"
		}
	}

	return c.JSON(fiber.Map{
		"status":       "OK",
		"timestamp":    time.Now().UTC(),
		"uptime":       h.stats.Uptime(),
		"environment":  h.stats.Environment(),
		"dependencies": deps,
	})
}

// Stats handles GET /api/stats
func (h *SystemHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Collect(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

type endpointDoc struct {
	Method      string `json:"method"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

var apiEndpoints = map[string]endpointDoc{
	"health":      {fiber.MethodGet, "/health", "Server health check"},
	"users":       {fiber.MethodGet, "/api/users", "Get all users with pagination and search"},
	"createUser":  {fiber.MethodPost, "/api/users", "Create a new user"},
	"getUser":     {fiber.MethodGet, "/api/users/:id", "Get user by ID"},
	"updateUser":  {fiber.MethodPut, "/api/users/:id", "Update user by ID"},
	"deleteUser":  {fiber.MethodDelete, "/api/users/:id", "Delete user by ID"},
	"posts":       {fiber.MethodGet, "/api/posts", "Get all posts with pagination"},
	"createPost":  {fiber.MethodPost, "/api/posts", "Create a new post"},
	"getPost":     {fiber.MethodGet, "/api/posts/:id", "Get post by ID"},
	"updatePost":  {fiber.MethodPut, "/api/posts/:id", "Update post by ID"},
	"deletePost":  {fiber.MethodDelete, "/api/posts/:id", "Delete post by ID"},
	"logs":        {fiber.MethodGet, "/api/logs", "View application logs"},
	"clearLogs":   {fiber.MethodPost, "/api/logs/clear", "Clear old log files"},
	"diagnostics": {fiber.MethodGet, "/api/logs/diagnostics", "View recent diagnostic log rows"},
	"stats":       {fiber.MethodGet, "/api/stats", "Get application statistics"},
	"metrics":     {fiber.MethodGet, "/metrics", "Prometheus metrics"},
}

// Docs handles GET /api
func (h *SystemHandler) Docs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "Backend API Documentation",
		"version":   "1.0.0",
		"endpoints": apiEndpoints,
	})
}
