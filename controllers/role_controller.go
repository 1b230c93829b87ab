package controller

import (
	"agencyops/middleware"
	"agencyops/models"
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

type RoleController struct {
	Roles *services.RoleService
}

func NewRoleController(roles *services.RoleService) *RoleController {
	return &RoleController{Roles: roles}
}

// GetPermissions returns the permission taxonomy grouped by category.
func (rc *RoleController) GetPermissions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": models.PermissionTaxonomy})
}

// CheckPermission reports whether the caller holds the permission in ?id=.
func (rc *RoleController) CheckPermission(c *fiber.Ctx) error {
	id := c.Query("id")
	perm, known := models.LookupPermission(id)
	if !known {
		return utils.HandleError(c, utils.NewNotFoundError("Permission not found"))
	}
	return c.JSON(fiber.Map{
		"permission": perm,
		"allowed":    utils.HasPermission(middleware.Permissions(c), id),
	})
}

func (rc *RoleController) GetRoles(c *fiber.Ctx) error {
	roles, err := rc.Roles.List(c.UserContext())
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(roles)
}

func (rc *RoleController) GetRole(c *fiber.Ctx) error {
	role, err := rc.Roles.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(role)
}

func (rc *RoleController) CreateRole(c *fiber.Ctx) error {
	var input services.RoleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	role, err := rc.Roles.Create(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

func (rc *RoleController) UpdateRole(c *fiber.Ctx) error {
	var input services.RoleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	role, err := rc.Roles.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(role)
}

func (rc *RoleController) DeleteRole(c *fiber.Ctx) error {
	if err := rc.Roles.Delete(c.UserContext(), c.Params("id")); err != nil {
		return utils.HandleError(c, err)
	}
	return deleted(c, "Role deleted successfully")
}
