package handlers

import (
	"net/http"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comments and their reply threads
type CommentHandler struct {
	activity *services.ActivityService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(activity *services.ActivityService) *CommentHandler {
	return &CommentHandler{activity: activity}
}

// RegisterCommentRoutes registers comment and reply routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.GET("/comments/:id/replies", h.GetReplies)
	g.POST("/comments/:id/replies", h.CreateReply)
	g.DELETE("/replies/:id", h.DeleteReply)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := parseIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.activity.CommentOnPost(c.Request().Context(), postID, userID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, comment)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	commentID, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}

	if err := h.activity.DeleteComment(c.Request().Context(), commentID, userID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CommentHandler) GetReplies(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}
	commentID, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}

	replies, err := h.activity.Replies(c.Request().Context(), commentID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, replies)
}

func (h *CommentHandler) CreateReply(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	commentID, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}
	var req models.CreateReplyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reply, err := h.activity.ReplyToComment(c.Request().Context(), commentID, userID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, reply)
}

func (h *CommentHandler) DeleteReply(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	replyID, err := parseIDParam(c, "id", "reply")
	if err != nil {
		return err
	}

	if err := h.activity.DeleteReply(c.Request().Context(), replyID, userID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
