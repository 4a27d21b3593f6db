package handlers

import (
	"net/http"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type MessageHandler struct {
	activity *services.ActivityService
}

func NewMessageHandler(activity *services.ActivityService) *MessageHandler {
	return &MessageHandler{activity: activity}
}

func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messages", h.SendMessage)
	g.GET("/messages/:id", h.GetMessage)
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	message, err := h.activity.SendMessage(c.Request().Context(), userID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, message)
}

func (h *MessageHandler) GetMessage(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "message")
	if err != nil {
		return err
	}

	message, err := h.activity.GetMessage(c.Request().Context(), id, userID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, message)
}
