package controller

import (
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

type TeamController struct {
	Teams *services.TeamService
}

func NewTeamController(teams *services.TeamService) *TeamController {
	return &TeamController{Teams: teams}
}

func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	teams, err := tc.Teams.List(c.UserContext())
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(teams)
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	team, err := tc.Teams.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(team)
}

func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	var input services.TeamInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	team, err := tc.Teams.Create(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

// UpdateTeam accepts the id in the path, the query string or the body.
func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	id := idParam(c)
	if id == "" {
		return missingID(c)
	}
	var input services.TeamInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	team, err := tc.Teams.Update(c.UserContext(), id, input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(team)
}

func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	id := idParam(c)
	if id == "" {
		return missingID(c)
	}
	if err := tc.Teams.Delete(c.UserContext(), id); err != nil {
		return utils.HandleError(c, err)
	}
	return deleted(c, "Team deleted successfully")
}
