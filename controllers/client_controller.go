package controller

import (
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

type ClientController struct {
	Clients     *services.ClientService
	Assignments *services.AssignmentService
}

func NewClientController(clients *services.ClientService, assignments *services.AssignmentService) *ClientController {
	return &ClientController{Clients: clients, Assignments: assignments}
}

func (cc *ClientController) GetClients(c *fiber.Ctx) error {
	clients, err := cc.Clients.List(c.UserContext(), services.ClientFilter{
		Status:    c.Query("status"),
		PackageID: c.Query("packageId"),
		Search:    c.Query("search"),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(clients)
}

func (cc *ClientController) GetClient(c *fiber.Ctx) error {
	client, err := cc.Clients.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(client)
}

func (cc *ClientController) GetClientAssignments(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := cc.Clients.Get(c.UserContext(), id); err != nil {
		return utils.HandleError(c, err)
	}
	assignments, err := cc.Assignments.ListByClient(c.UserContext(), id)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(assignments)
}

func (cc *ClientController) CreateClient(c *fiber.Ctx) error {
	var input services.ClientInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	client, err := cc.Clients.Create(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func (cc *ClientController) UpdateClient(c *fiber.Ctx) error {
	var input services.ClientInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	client, err := cc.Clients.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(client)
}

func (cc *ClientController) DeleteClient(c *fiber.Ctx) error {
	if err := cc.Clients.Delete(c.UserContext(), c.Params("id")); err != nil {
		return utils.HandleError(c, err)
	}
	return deleted(c, "Client deleted successfully")
}
