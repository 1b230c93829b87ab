package middleware

import (
	"strings"

	"agencyops/models"
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

// Protected authenticates the bearer token (or access_token cookie/query) and puts
// the user and their permissions on the request.
func Protected(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization format",
				})
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie, then query (websocket clients cannot set headers)
			token = c.Cookies("access_token")
			if token == "" {
				token = c.Query("access_token")
			}
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization required",
				})
			}
		}

		user, permissions, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return utils.HandleError(c, err)
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		c.Locals("permissions", permissions)
		c.SetUserContext(services.WithActor(c.UserContext(), user.ID))

		return c.Next()
	}
}

// CurrentUser returns the user set by Protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// Permissions returns the permission ids set by Protected.
func Permissions(c *fiber.Ctx) []string {
	perms, _ := c.Locals("permissions").([]string)
	return perms
}
