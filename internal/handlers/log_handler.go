package handlers

import (
	"errors"
	"fmt"

	mw "go-logapi/internal/middleware"
	"go-logapi/internal/pkg/validation"
	"go-logapi/internal/repositories"
	"go-logapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultDiagnosticsLimit = 100
	maxDiagnosticsLimit     = 1000
)

// ClearLogsRequest is the body of POST /api/logs/clear. A missing daysToKeep means the default window.
type ClearLogsRequest struct {
	DaysToKeep *int `json:"daysToKeep" validate:"omitempty,min=0" message:"daysToKeep must be a non-negative integer"`
}

// LogHandler serves the request log partitions and the diagnostic log
type LogHandler struct {
	logs *services.RequestLogService
}

// NewLogHandler creates a new LogHandler
func NewLogHandler(logs *services.RequestLogService) *LogHandler {
	return &LogHandler{logs: logs}
}

// GetLogs handles GET /api/logs?date=YYYY-MM-DD
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		date = repositories.Today()
	}
	records, err := h.logs.GetLogs(date)
	if errors.Is(err, repositories.ErrInvalidLogDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []string{"date must be in YYYY-MM-DD format"},
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"date":    date,
		"logs":    records,
		"count":   len(records),
		"message": fmt.Sprintf("Retrieved %d log entries for %s", len(records), date),
	})
}

// ClearLogs handles POST /api/logs/clear
func (h *LogHandler) ClearLogs(c *fiber.Ctx) error {
	logger := mw.GetRequestFileLogger(c)
	var req ClearLogsRequest
	if len(c.Body()) > 0 && !validation.ParseAndValidate(c, &req) {
		logger.Warn("Clear logs request rejected")
		return nil
	}
	days := services.DefaultDaysToKeep
	if req.DaysToKeep != nil {
		days = *req.DaysToKeep
	}

	removed, err := h.logs.ClearOldLogs(days)
	if err != nil {
		logger.Error("Failed to clear old logs", zap.Int("daysToKeep", days), zap.Error(err))
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Old logs cleared successfully",
		"daysKept": days,
		"removed":  removed,
	})
}

// Diagnostics handles GET /api/logs/diagnostics?limit=N
func (h *LogHandler) Diagnostics(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultDiagnosticsLimit)
	if limit < 1 {
		limit = defaultDiagnosticsLimit
	}
	if limit > maxDiagnosticsLimit {
		limit = maxDiagnosticsLimit
	}
	entries, err := h.logs.RecentDiagnostics(c.UserContext(), limit)
	if errors.Is(err, repositories.ErrDiagnosticsUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Diagnostic log store is not enabled"})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"logs": entries, "count": len(entries)})
}

// SetupLogRoutes registers log routes under router
func (h *LogHandler) SetupLogRoutes(router fiber.Router) {
	g := router.Group("/logs")
	g.Get("/", h.GetLogs)
	g.Post("/clear", h.ClearLogs)
	g.Get("/diagnostics", h.Diagnostics)
}
