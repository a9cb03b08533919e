package handlers

import (
	mw "go-logapi/internal/middleware"
	"go-logapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles /api/users requests
type UserHandler struct {
	users services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users?page=&limit=&search=
func (h *UserHandler) List(c *fiber.Ctx) error {
	q := services.UserListQuery{
		PageRequest: services.PageRequest{
			Page:  c.QueryInt("page", services.DefaultPage),
			Limit: c.QueryInt("limit", services.DefaultLimit),
		},
		Search: c.Query("search"),
	}
	users, pagination, err := h.users.List(c.UserContext(), q)
	if err != nil {
		return writeServiceError(c, mw.GetRequestFileLogger(c), err)
	}
	return c.JSON(fiber.Map{"users": users, "pagination": pagination})
}

// Get handles GET /api/users/:id
func (h *UserHandler) Get(c *fiber.Ctx) error {
	logger := mw.GetRequestFileLogger(c)
	id, ok := pathID(c)
	if !ok {
		return writeServiceError(c, logger, services.ErrUserNotFound)
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, logger, err)
	}
	return c.JSON(user)
}

// Create handles POST /api/users
func (h *UserHandler) Create(c *fiber.Ctx) error {
	logger := mw.GetRequestFileLogger(c)
	var in services.UserInput
	if !parseBody(c, logger, &in) {
		return nil
	}
	user, err := h.users.Create(c.UserContext(), in)
	if err != nil {
		return writeServiceError(c, logger, err)
	}
	logger.Info("User created via API", zap.Int64("userID", user.ID))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Update handles PUT /api/users/:id
func (h *UserHandler) Update(c *fiber.Ctx) error {
	logger := mw.GetRequestFileLogger(c)
	id, ok := pathID(c)
	if !ok {
		return writeServiceError(c, logger, services.ErrUserNotFound)
	}
	var in services.UserInput
	if !parseBody(c, logger, &in) {
		return nil
	}
	user, err := h.users.Update(c.UserContext(), id, in)
	if err != nil {
		return writeServiceError(c, logger, err)
	}
	return c.JSON(user)
}

// Delete handles DELETE /api/users/:id
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	logger := mw.GetRequestFileLogger(c)
	id, ok := pathID(c)
	if !ok {
		return writeServiceError(c, logger, services.ErrUserNotFound)
	}
	user, err := h.users.Delete(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, logger, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully", "user": user})
}

// SetupUserRoutes registers user routes under router
func (h *UserHandler) SetupUserRoutes(router fiber.Router) {
	g := router.Group("/users")
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id", h.Get)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
}
