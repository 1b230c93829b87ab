package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err    *AppError
		kind   ErrorKind
		status int
	}{
		{NewValidationError("bad %s", "input"), KindValidation, http.StatusBadRequest},
		{NewNotFoundError("Template not found"), KindNotFound, http.StatusNotFound},
		{NewConflictError("Team name already exists"), KindConflict, http.StatusBadRequest},
		{NewDependencyError("Cannot delete team with %d members", 3), KindDependency, http.StatusBadRequest},
		{NewUnauthorizedError("Invalid email or password"), KindUnauthorized, http.StatusUnauthorized},
		{NewInternalError("Failed to fetch", errors.New("boom")), KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.status, tt.kind.Status())

			wrapped := fmt.Errorf("context: %w", tt.err)
			assert.True(t, IsKind(wrapped, tt.kind))
		})
	}

	assert.Equal(t, "Cannot delete team with 3 members", NewDependencyError("Cannot delete team with %d members", 3).Error())
	assert.Equal(t, "Failed to fetch: boom", NewInternalError("Failed to fetch", errors.New("boom")).Error())
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError("Failed to save", cause)
	assert.ErrorIs(t, err, cause)
}

func TestHandleError(t *testing.T) {
	app := fiber.New()
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return HandleError(c, NewConflictError("Team name already exists"))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return HandleError(c, errors.New("secret driver detail"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/conflict", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Team name already exists"}`, string(body))

	ShowErrorDetails = false
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Internal server error"}`, string(body))
}
