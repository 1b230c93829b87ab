package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// idParam resolves a resource id from the path, then the query string, then
// the JSON body's "id" field.
func idParam(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Params("id")); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		return id
	}
	var body struct {
		ID string `json:"id"`
	}
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&body)
	}
	return strings.TrimSpace(body.ID)
}

func missingID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "ID is required",
	})
}

func deleted(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"message": message})
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+key+" date")
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
