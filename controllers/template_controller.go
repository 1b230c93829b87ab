package controller

import (
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type TemplateController struct {
	Templates   *services.TemplateService
	Assignments *services.AssignmentService
	Logger      *logrus.Entry
}

func NewTemplateController(templates *services.TemplateService, assignments *services.AssignmentService) *TemplateController {
	return &TemplateController{
		Templates:   templates,
		Assignments: assignments,
		Logger:      utils.Logger("templates"),
	}
}

// GetTemplates lists templates, optionally filtered by search, packageId and status.
func (tc *TemplateController) GetTemplates(c *fiber.Ctx) error {
	templates, err := tc.Templates.List(c.UserContext(), services.TemplateFilter{
		Search:    c.Query("search"),
		PackageID: c.Query("packageId"),
		Status:    c.Query("status"),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(templates)
}

func (tc *TemplateController) GetTemplate(c *fiber.Ctx) error {
	template, err := tc.Templates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(template)
}

func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var input services.TemplateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	template, err := tc.Templates.Create(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	tc.Logger.WithFields(logrus.Fields{
		"template_id": template.ID,
		"assets":      len(template.SitesAssets),
	}).Info("Template created")
	return c.Status(fiber.StatusCreated).JSON(template)
}

// UpdateTemplate replaces the template's fields and both child collections.
func (tc *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	var input services.TemplateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	template, err := tc.Templates.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(template)
}

func (tc *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := tc.Templates.Delete(c.UserContext(), id); err != nil {
		return utils.HandleError(c, err)
	}
	tc.Logger.WithField("template_id", id).Info("Template deleted")
	return deleted(c, "Template deleted successfully")
}

func (tc *TemplateController) GetTemplateAssignments(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := tc.Templates.Get(c.UserContext(), id); err != nil {
		return utils.HandleError(c, err)
	}
	assignments, err := tc.Assignments.ListByTemplate(c.UserContext(), id)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(assignments)
}
