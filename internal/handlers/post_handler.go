package handlers

import (
	mw "go-logapi/internal/middleware"
	"go-logapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PostHandler handles /api/posts requests
type PostHandler struct {
	posts services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// List handles GET /api/posts?page=&limit=&userId=
func (h *PostHandler) List(c *fiber.Ctx) error {
	q := services.PostListQuery{
		PageRequest: services.PageRequest{
			Page:  c.QueryInt("page", services.DefaultPage),
			Limit: c.QueryInt("limit", services.DefaultLimit),
		},
		UserID: int64(c.QueryInt("userId", 0)),
	}
	posts, pagination, err := h.posts.List(c.UserContext(), q)
	if err != nil {
		return writeServiceError(c, mw.GetRequestFileLogger(c), err)
	}
	return c.JSON(fiber.Map{"posts": posts, "pagination": pagination})
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	logger := mw.GetRequestFileLogger(c)
	id, ok := pathID(c)
	if !ok {
		return writeServiceError(c, logger, services.ErrPostNotFound)
	}
	post, err := h.posts.Get(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, logger, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	logger := mw.GetRequestFileLogger(c)
	var in services.PostInput
	if !parseBody(c, logger, &in) {
		return nil
	}
	post, err := h.posts.Create(c.UserContext(), in)
	if err != nil {
		return writeServiceError(c, logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	logger := mw.GetRequestFileLogger(c)
	id, ok := pathID(c)
	if !ok {
		return writeServiceError(c, logger, services.ErrPostNotFound)
	}
	var in services.PostInput
	if !parseBody(c, logger, &in) {
		return nil
	}
	post, err := h.posts.Update(c.UserContext(), id, in)
	if err != nil {
		return writeServiceError(c, logger, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	logger := mw.GetRequestFileLogger(c)
	id, ok := pathID(c)
	if !ok {
		return writeServiceError(c, logger, services.ErrPostNotFound)
	}
	post, err := h.posts.Delete(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, logger, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully", "post": post})
}

// SetupPostRoutes registers post routes under router
func (h *PostHandler) SetupPostRoutes(router fiber.Router) {
	g := router.Group("/posts")
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id", h.Get)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
}
