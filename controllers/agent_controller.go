package controller

import (
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

type AgentController struct {
	Agents *services.AgentService
}

func NewAgentController(agents *services.AgentService) *AgentController {
	return &AgentController{Agents: agents}
}

func (ac *AgentController) GetAgents(c *fiber.Ctx) error {
	agents, err := ac.Agents.List(c.UserContext(), services.AgentFilter{
		TeamID: c.Query("teamId"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(agents)
}

func (ac *AgentController) GetAgent(c *fiber.Ctx) error {
	agent, err := ac.Agents.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(agent)
}

func (ac *AgentController) CreateAgent(c *fiber.Ctx) error {
	var input services.AgentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	agent, err := ac.Agents.Create(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(agent)
}

func (ac *AgentController) UpdateAgent(c *fiber.Ctx) error {
	id := idParam(c)
	if id == "" {
		return missingID(c)
	}
	var input services.AgentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	agent, err := ac.Agents.Update(c.UserContext(), id, input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(agent)
}

func (ac *AgentController) DeleteAgent(c *fiber.Ctx) error {
	id := idParam(c)
	if id == "" {
		return missingID(c)
	}
	if err := ac.Agents.Delete(c.UserContext(), id); err != nil {
		return utils.HandleError(c, err)
	}
	return deleted(c, "Agent deleted successfully")
}
