package controller

import (
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AssignmentController struct {
	Assignments *services.AssignmentService
	Logger      *logrus.Entry
}

func NewAssignmentController(assignments *services.AssignmentService) *AssignmentController {
	return &AssignmentController{Assignments: assignments, Logger: utils.Logger("assignments")}
}

func (ac *AssignmentController) GetAssignments(c *fiber.Ctx) error {
	assignments, err := ac.Assignments.List(c.UserContext(), services.AssignmentFilter{
		TemplateID: c.Query("templateId"),
		ClientID:   c.Query("clientId"),
		Status:     c.Query("status"),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(assignments)
}

// CreateAssignment assigns a template to a client and returns the
// assignment with the tasks it generated.
func (ac *AssignmentController) CreateAssignment(c *fiber.Ctx) error {
	var input services.AssignmentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	assignment, err := ac.Assignments.Create(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ac.Logger.WithFields(logrus.Fields{
		"assignment_id": assignment.ID,
		"template_id":   assignment.TemplateID,
		"client_id":     assignment.ClientID,
		"tasks":         len(assignment.GeneratedTasks),
	}).Info("Template assigned")
	return c.Status(fiber.StatusCreated).JSON(assignment)
}

func (ac *AssignmentController) UpdateAssignment(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	assignment, err := ac.Assignments.UpdateStatus(c.UserContext(), c.Params("id"), input.Status)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(assignment)
}

func (ac *AssignmentController) DeleteAssignment(c *fiber.Ctx) error {
	if err := ac.Assignments.Delete(c.UserContext(), c.Params("id")); err != nil {
		return utils.HandleError(c, err)
	}
	return deleted(c, "Assignment deleted successfully")
}
