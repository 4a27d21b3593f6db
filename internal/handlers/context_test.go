package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/reachout/backend/internal/middleware"
	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("post 1: %w", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("notification 2: %w", services.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("bad verb: %w", services.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("dup: %w", services.ErrConflict), http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{&services.StorageError{Op: "list", Err: context.DeadlineExceeded}, http.StatusServiceUnavailable},
		{&services.StorageError{Op: "list", Err: errors.New("connection reset")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var he *echo.HTTPError
		require.True(t, errors.As(toHTTPError(tc.err), &he))
		assert.Equal(t, tc.code, he.Code, tc.err.Error())
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Zero(t, getUserIDFromContext(c))

	_, err := currentUserID(c)
	assert.Error(t, err)

	c.Set(middleware.UserContextKey, &models.JwtCustomClaims{UserID: 9})
	assert.EqualValues(t, 9, getUserIDFromContext(c))
}

func TestParseIDParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")

	c.SetParamValues("12")
	id, err := parseIDParam(c, "id", "post")
	require.NoError(t, err)
	assert.EqualValues(t, 12, id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		c.SetParamValues(bad)
		_, err := parseIDParam(c, "id", "post")
		assert.Error(t, err, bad)
	}
}
