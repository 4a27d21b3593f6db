package handlers

import (
	"net/http"

	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	accounts *services.AccountService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.GET("/users/:id", h.GetUser)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	profile, err := h.accounts.Profile(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, profile)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	profile, err := h.accounts.Profile(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, profile)
}
