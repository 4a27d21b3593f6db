package validators

import (
	"net/http"
	"testing"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&models.CreatePostRequest{Content: "hello"}))

	err := v.Validate(&models.CreatePostRequest{})
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)

	err = v.Validate(&models.RegisterRequest{Username: "ok_name!", Email: "nope", Password: "short"})
	assert.Error(t, err)
}
