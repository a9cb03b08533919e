package middleware

import (
	"go-logapi/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLoggers injects request-scoped loggers carrying a request_id field
// into c.Locals(). An incoming X-Request-ID is reused, otherwise a UUID is
// generated; either way it is echoed on the response.
func RequestLoggers(baseFileLogger, baseSQLiteLogger *zap.Logger) fiber.Handler {
	if baseFileLogger == nil {
		baseFileLogger = zap.NewNop()
	}
	if baseSQLiteLogger == nil {
		baseSQLiteLogger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		requestID := utils.CopyString(c.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)
		c.Locals(RequestIDKey, requestID)

		c.Locals(RequestFileLoggerKey, baseFileLogger.With(zap.String("request_id", requestID)))
		c.Locals(RequestSQLiteLoggerKey, baseSQLiteLogger.With(zap.String("request_id", requestID)))

		return c.Next()
	}
}

// GetRequestFileLogger returns the request-scoped console/file logger, falling
// back to the global one.
func GetRequestFileLogger(c *fiber.Ctx) *zap.Logger {
	if logger, ok := c.Locals(RequestFileLoggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return logging.GetFileLogger()
}

// GetRequestSQLiteLogger returns the request-scoped SQLite logger, falling back
// to the global one (which might be a no-op).
func GetRequestSQLiteLogger(c *fiber.Ctx) *zap.Logger {
	if logger, ok := c.Locals(RequestSQLiteLoggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return logging.GetSQLiteLogger()
}

// GetRequestID returns the request ID stored by RequestLoggers, or "".
func GetRequestID(c *fiber.Ctx) string {
	if reqID, ok := c.Locals(RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}
