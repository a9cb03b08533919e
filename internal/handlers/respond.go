package handlers

import (
	"errors"

	"go-logapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// parseBody decodes the request body into payload. On failure it sends a 400
// and returns false.
func parseBody(c *fiber.Ctx, logger *zap.Logger, payload interface{}) bool {
	if err := c.BodyParser(payload); err != nil {
		logger.Warn("Request body could not be parsed", zap.Error(err))
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []string{"Invalid request body"},
		})
		return false
	}
	return true
}

// pathID reads the :id route parameter. ok is false when it is not a positive integer.
func pathID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

// writeServiceError maps service errors onto HTTP responses. Unknown errors are
// returned so the app ErrorHandler renders a 500.
func writeServiceError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Warn("Validation failed", zap.Strings("errors", verr.Messages))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": verr.Messages})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	case errors.Is(err, services.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	case errors.Is(err, services.ErrEmailExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
	default:
		return err
	}
}
