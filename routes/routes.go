package routes

import (
	"time"

	controller "agencyops/controllers"
	"agencyops/middleware"
	"agencyops/models"
	"agencyops/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// Services is everything the HTTP layer needs.
type Services struct {
	Auth           *services.AuthService
	Roles          *services.RoleService
	Templates      *services.TemplateService
	Assignments    *services.AssignmentService
	Teams          *services.TeamService
	Agents         *services.AgentService
	Packages       *services.PackageService
	Clients        *services.ClientService
	Tasks          *services.TaskService
	TaskCategories *services.TaskCategoryService
	Activity       *services.ActivityService
	Onboarding     *services.OnboardingService

	LoginRateLimit   int
	RateLimitStorage fiber.Storage
}

func SetupRoutes(app *fiber.App, svc Services) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	SetupAuthRoutes(api, svc)
	SetupAPIRoutes(api, svc)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})

	logrus.WithField("component", "routes").Info("Routes initialized successfully")
}

func SetupAuthRoutes(api fiber.Router, svc Services) {
	authController := controller.NewAuthController(svc.Auth)

	auth := api.Group("/auth")
	auth.Post("/login", middleware.LoginRateLimiter(svc.LoginRateLimit, svc.RateLimitStorage), authController.Login)
	auth.Get("/me", middleware.Protected(svc.Auth), authController.Me)
}

func SetupAPIRoutes(api fiber.Router, svc Services) {
	templateController := controller.NewTemplateController(svc.Templates, svc.Assignments)
	assignmentController := controller.NewAssignmentController(svc.Assignments)
	teamController := controller.NewTeamController(svc.Teams)
	agentController := controller.NewAgentController(svc.Agents)
	packageController := controller.NewPackageController(svc.Packages)
	clientController := controller.NewClientController(svc.Clients, svc.Assignments)
	taskController := controller.NewTaskController(svc.Tasks, svc.TaskCategories)
	roleController := controller.NewRoleController(svc.Roles)
	activityController := controller.NewActivityController(svc.Activity)
	onboardingController := controller.NewOnboardingController(svc.Onboarding)

	protected := api.Group("", middleware.Protected(svc.Auth))
	can := middleware.RequirePermission

	// Permission taxonomy
	protected.Get("/permissions", roleController.GetPermissions)
	protected.Get("/permissions/check", roleController.CheckPermission)

	// Template catalog
	templates := protected.Group("/templates")
	templates.Get("/", can(models.PermViewTemplates), templateController.GetTemplates)
	templates.Post("/", can(models.PermCreateTemplate), templateController.CreateTemplate)
	templates.Get("/:id", can(models.PermViewTemplates), templateController.GetTemplate)
	templates.Put("/:id", can(models.PermEditTemplate), templateController.UpdateTemplate)
	templates.Delete("/:id", can(models.PermDeleteTemplate), templateController.DeleteTemplate)
	templates.Get("/:id/assignments", can(models.PermViewTemplates), templateController.GetTemplateAssignments)

	// Assignments
	assignments := protected.Group("/assignments")
	assignments.Get("/", can(models.PermViewTemplates), assignmentController.GetAssignments)
	assignments.Post("/", can(models.PermAssignTemplate), assignmentController.CreateAssignment)
	assignments.Put("/:id", can(models.PermAssignTemplate), assignmentController.UpdateAssignment)
	assignments.Delete("/:id", can(models.PermAssignTemplate), assignmentController.DeleteAssignment)

	// Teams; PUT and DELETE also accept the id in the body or query
	teams := protected.Group("/teams")
	teams.Get("/", can(models.PermViewTeams), teamController.GetTeams)
	teams.Post("/", can(models.PermManageTeams), teamController.CreateTeam)
	teams.Put("/", can(models.PermManageTeams), teamController.UpdateTeam)
	teams.Delete("/", can(models.PermManageTeams), teamController.DeleteTeam)
	teams.Get("/:id", can(models.PermViewTeams), teamController.GetTeam)
	teams.Put("/:id", can(models.PermManageTeams), teamController.UpdateTeam)
	teams.Delete("/:id", can(models.PermManageTeams), teamController.DeleteTeam)

	// Agents
	agents := protected.Group("/agents")
	agents.Get("/", can(models.PermViewAgents), agentController.GetAgents)
	agents.Post("/", can(models.PermManageAgents), agentController.CreateAgent)
	agents.Put("/", can(models.PermManageAgents), agentController.UpdateAgent)
	agents.Delete("/", can(models.PermManageAgents), agentController.DeleteAgent)
	agents.Get("/:id", can(models.PermViewAgents), agentController.GetAgent)
	agents.Put("/:id", can(models.PermManageAgents), agentController.UpdateAgent)
	agents.Delete("/:id", can(models.PermManageAgents), agentController.DeleteAgent)

	// Packages
	packages := protected.Group("/packages")
	packages.Get("/", can(models.PermViewPackages), packageController.GetPackages)
	packages.Post("/", can(models.PermCreatePackage), packageController.CreatePackage)
	packages.Get("/:id", can(models.PermViewPackages), packageController.GetPackage)
	packages.Put("/:id", can(models.PermEditPackage), packageController.UpdatePackage)
	packages.Delete("/:id", can(models.PermDeletePackage), packageController.DeletePackage)

	// Clients
	clients := protected.Group("/clients")
	clients.Get("/", can(models.PermViewClients), clientController.GetClients)
	clients.Post("/", can(models.PermCreateClient), clientController.CreateClient)
	clients.Get("/:id", can(models.PermViewClients), clientController.GetClient)
	clients.Get("/:id/assignments", can(models.PermViewClients), clientController.GetClientAssignments)
	clients.Put("/:id", can(models.PermEditClient), clientController.UpdateClient)
	clients.Delete("/:id", can(models.PermDeleteClient), clientController.DeleteClient)

	// Tasks
	tasks := protected.Group("/tasks")
	tasks.Get("/", can(models.PermViewTasks), taskController.GetTasks)
	tasks.Post("/", can(models.PermManageTasks), taskController.CreateTask)
	tasks.Get("/client/:clientId", can(models.PermViewTasks), taskController.GetClientTasks)
	tasks.Get("/:id", can(models.PermViewTasks), taskController.GetTask)
	tasks.Put("/:id", can(models.PermManageTasks), taskController.UpdateTask)
	tasks.Delete("/:id", can(models.PermManageTasks), taskController.DeleteTask)

	categories := protected.Group("/task-categories")
	categories.Get("/", can(models.PermViewTasks), taskController.GetCategories)
	categories.Post("/", can(models.PermManageTasks), taskController.CreateCategory)
	categories.Put("/", can(models.PermManageTasks), taskController.UpdateCategory)
	categories.Delete("/", can(models.PermManageTasks), taskController.DeleteCategory)
	categories.Put("/:id", can(models.PermManageTasks), taskController.UpdateCategory)
	categories.Delete("/:id", can(models.PermManageTasks), taskController.DeleteCategory)

	// Roles
	roles := protected.Group("/roles", can(models.PermManageRoles))
	roles.Get("/", roleController.GetRoles)
	roles.Post("/", roleController.CreateRole)
	roles.Get("/:id", roleController.GetRole)
	roles.Put("/:id", roleController.UpdateRole)
	roles.Delete("/:id", roleController.DeleteRole)

	// Activity log and live feed
	activities := protected.Group("/activities", can(models.PermViewActivity))
	activities.Get("/", activityController.GetActivities)
	activities.Get("/ws", activityController.UpgradeWS, websocket.New(activityController.StreamActivities))

	// Onboarding wizard
	onboarding := protected.Group("/onboarding", can(models.PermCreateClient))
	onboarding.Get("/draft", onboardingController.GetDraft)
	onboarding.Put("/draft", onboardingController.SaveDraft)
	onboarding.Delete("/draft", onboardingController.DiscardDraft)
	onboarding.Post("/draft/next", onboardingController.NextStep)
	onboarding.Post("/draft/previous", onboardingController.PreviousStep)
	onboarding.Post("/submit", onboardingController.Submit)
}
