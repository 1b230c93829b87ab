package controller

import (
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

type PackageController struct {
	Packages *services.PackageService
}

func NewPackageController(packages *services.PackageService) *PackageController {
	return &PackageController{Packages: packages}
}

func (pc *PackageController) GetPackages(c *fiber.Ctx) error {
	packages, err := pc.Packages.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(packages)
}

func (pc *PackageController) GetPackage(c *fiber.Ctx) error {
	pkg, err := pc.Packages.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(pkg)
}

func (pc *PackageController) CreatePackage(c *fiber.Ctx) error {
	var input services.PackageInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	pkg, err := pc.Packages.Create(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pkg)
}

func (pc *PackageController) UpdatePackage(c *fiber.Ctx) error {
	var input services.PackageInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	pkg, err := pc.Packages.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(pkg)
}

func (pc *PackageController) DeletePackage(c *fiber.Ctx) error {
	if err := pc.Packages.Delete(c.UserContext(), c.Params("id")); err != nil {
		return utils.HandleError(c, err)
	}
	return deleted(c, "Package deleted successfully")
}
