package handlers

import (
	"net/http"

	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	activity *services.ActivityService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(activity *services.ActivityService) *FollowHandler {
	return &FollowHandler{activity: activity}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.POST("/users/:id/unfollow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	follow, err := h.activity.FollowUser(c.Request().Context(), userID, targetID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, follow)
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	if err := h.activity.UnfollowUser(c.Request().Context(), userID, targetID); err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"following": false})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	followers, err := h.activity.Followers(c.Request().Context(), targetID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, followers)
}
