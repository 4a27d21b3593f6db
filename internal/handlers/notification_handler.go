package handlers

import (
	"net/http"

	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.ListNotifications)
	g.GET("/notifications/", h.ListNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.POST("/notifications/:id/delete", h.DeleteNotification)
	g.POST("/notifications/:id/delete/", h.DeleteNotification)
}

// ListNotifications returns every notification of the caller newest first
// and marks them read.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	views, err := h.notifications.ListFor(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notifications.Delete(c.Request().Context(), id, userID); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	count, err := h.notifications.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}
