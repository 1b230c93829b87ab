package middleware

import (
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

// RequirePermission rejects callers whose role does not grant permissionID.
// Must run after Protected.
func RequirePermission(permissionID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !utils.HasPermission(Permissions(c), permissionID) {
			utils.LogEvent("permission_denied", map[string]interface{}{
				"permission": permissionID,
				"path":       c.Path(),
				"ip":         c.IP(),
			})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":      "You do not have permission to perform this action",
				"permission": permissionID,
			})
		}
		return c.Next()
	}
}
