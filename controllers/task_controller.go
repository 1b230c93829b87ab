package controller

import (
	"agencyops/services"
	"agencyops/utils"

	"github.com/gofiber/fiber/v2"
)

type TaskController struct {
	Tasks      *services.TaskService
	Categories *services.TaskCategoryService
}

func NewTaskController(tasks *services.TaskService, categories *services.TaskCategoryService) *TaskController {
	return &TaskController{Tasks: tasks, Categories: categories}
}

func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	tasks, err := tc.Tasks.List(c.UserContext(), services.TaskFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssignedTo: c.Query("assignedTo"),
		ClientID:   c.Query("clientId"),
		CategoryID: c.Query("categoryId"),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(tasks)
}

// GetClientTasks returns a client's tasks ordered by asset type, priority
// and due date.
func (tc *TaskController) GetClientTasks(c *fiber.Ctx) error {
	tasks, err := tc.Tasks.ListByClient(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(tasks)
}

func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	task, err := tc.Tasks.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	var input services.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	task, err := tc.Tasks.Create(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	var input services.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	task, err := tc.Tasks.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	if err := tc.Tasks.Delete(c.UserContext(), c.Params("id")); err != nil {
		return utils.HandleError(c, err)
	}
	return deleted(c, "Task deleted successfully")
}

func (tc *TaskController) GetCategories(c *fiber.Ctx) error {
	categories, err := tc.Categories.List(c.UserContext())
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(categories)
}

func (tc *TaskController) CreateCategory(c *fiber.Ctx) error {
	var input services.TaskCategoryInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	category, err := tc.Categories.Create(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (tc *TaskController) UpdateCategory(c *fiber.Ctx) error {
	id := idParam(c)
	if id == "" {
		return missingID(c)
	}
	var input services.TaskCategoryInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c)
	}
	category, err := tc.Categories.Update(c.UserContext(), id, input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(category)
}

func (tc *TaskController) DeleteCategory(c *fiber.Ctx) error {
	id := idParam(c)
	if id == "" {
		return missingID(c)
	}
	if err := tc.Categories.Delete(c.UserContext(), id); err != nil {
		return utils.HandleError(c, err)
	}
	return deleted(c, "Task category deleted successfully")
}
