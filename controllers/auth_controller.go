package controller

import (
	"agencyops/middleware"
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	session, err := ac.Auth.Login(c.UserContext(), input)
	if err != nil {
		utils.LogEvent("login_failed", map[string]interface{}{
			"email": input.Email,
			"ip":    c.IP(),
		})
		return utils.HandleError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    session.AccessToken,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(session)
}

// Me returns the authenticated user and the permission ids their role grants.
func (ac *AuthController) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"user":        middleware.CurrentUser(c),
		"permissions": middleware.Permissions(c),
	})
}
