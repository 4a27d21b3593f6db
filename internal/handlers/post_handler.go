package handlers

import (
	"net/http"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	activity *services.ActivityService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(activity *services.ActivityService) *PostHandler {
	return &PostHandler{activity: activity}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost handles the creation of a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.activity.CreatePost(c.Request().Context(), userID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, post)
}

// GetPost returns a post with its like count and comments
func (h *PostHandler) GetPost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	detail, err := h.activity.GetPost(c.Request().Context(), id, userID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, detail)
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	if err := h.activity.DeletePost(c.Request().Context(), id, userID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
