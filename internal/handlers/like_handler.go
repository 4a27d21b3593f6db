package handlers

import (
	"net/http"

	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles likes on posts, comments and replies
type LikeHandler struct {
	activity *services.ActivityService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(activity *services.ActivityService) *LikeHandler {
	return &LikeHandler{activity: activity}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
	g.POST("/comments/:id/like", h.LikeComment)
	g.DELETE("/comments/:id/like", h.UnlikeComment)
	g.POST("/replies/:id/like", h.LikeReply)
	g.DELETE("/replies/:id/like", h.UnlikeReply)
}

// likeAction parses the caller and the :id parameter shared by every route.
func likeAction(c echo.Context, label string) (userID, targetID uint, err error) {
	if userID, err = currentUserID(c); err != nil {
		return 0, 0, err
	}
	if targetID, err = parseIDParam(c, "id", label); err != nil {
		return 0, 0, err
	}
	return userID, targetID, nil
}

func (h *LikeHandler) LikePost(c echo.Context) error {
	userID, postID, err := likeAction(c, "post")
	if err != nil {
		return err
	}
	like, err := h.activity.LikePost(c.Request().Context(), postID, userID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, like)
}

func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID, postID, err := likeAction(c, "post")
	if err != nil {
		return err
	}
	if err := h.activity.UnlikePost(c.Request().Context(), postID, userID); err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"liked": false})
}

func (h *LikeHandler) LikeComment(c echo.Context) error {
	userID, commentID, err := likeAction(c, "comment")
	if err != nil {
		return err
	}
	like, err := h.activity.LikeComment(c.Request().Context(), commentID, userID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, like)
}

func (h *LikeHandler) UnlikeComment(c echo.Context) error {
	userID, commentID, err := likeAction(c, "comment")
	if err != nil {
		return err
	}
	if err := h.activity.UnlikeComment(c.Request().Context(), commentID, userID); err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"liked": false})
}

func (h *LikeHandler) LikeReply(c echo.Context) error {
	userID, replyID, err := likeAction(c, "reply")
	if err != nil {
		return err
	}
	like, err := h.activity.LikeReply(c.Request().Context(), replyID, userID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, like)
}

func (h *LikeHandler) UnlikeReply(c echo.Context) error {
	userID, replyID, err := likeAction(c, "reply")
	if err != nil {
		return err
	}
	if err := h.activity.UnlikeReply(c.Request().Context(), replyID, userID); err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"liked": false})
}
