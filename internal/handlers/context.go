package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/reachout/backend/internal/middleware"
	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/anonto42/reachout/backend/pkg/zlog"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// getUserIDFromContext returns the authenticated user id, or 0.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get(middleware.UserContextKey).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

func currentUserID(c echo.Context) (uint, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

func parseIDParam(c echo.Context, name, label string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+label+" ID")
	}
	return uint(id), nil
}

// bindAndValidate decodes the body into req and runs the Echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// toHTTPError maps service errors onto HTTP status codes.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if services.IsTimeout(err) {
		zlog.Error("request timed out", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Request timed out")
	}
	zlog.Error("request failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
