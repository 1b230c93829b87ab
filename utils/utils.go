package utils

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ShowErrorDetails adds the cause and stack of internal errors to responses.
// Enabled only in development.
var ShowErrorDetails bool

// GenerateRateLimitKey creates a unique key for rate limiting
func GenerateRateLimitKey(scope, ip string) string {
	return fmt.Sprintf("rl:%s:%s", scope, ip)
}

// TrimPtr trims a string pointer and returns nil for blank values.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"error": message,
	}
	if err != nil && ShowErrorDetails {
		response["details"] = fmt.Sprintf("%+v", err)
	}
	return c.Status(status).JSON(response)
}

// HandleError converts a service error into the JSON error response for its kind.
func HandleError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !asAppError(err, &appErr) {
		appErr = NewInternalError("Internal server error", err)
	}
	if appErr.Kind == KindInternal {
		LogError("internal", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		return ErrorResponse(c, appErr.Kind.Status(), appErr.Message, appErr.Err)
	}
	return ErrorResponse(c, appErr.Kind.Status(), appErr.Message, nil)
}

// BadRequest is the response for an unparsable request body.
func BadRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}
