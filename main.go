package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agencyops/config"
	"agencyops/middleware"
	"agencyops/routes"
	"agencyops/services"
	"agencyops/utils"
	"agencyops/worker"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.AppConfig

	utils.InitLogger(cfg.Environment)
	utils.ShowErrorDetails = cfg.IsDevelopment()
	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logrus.WithError(err).Warn("Sentry initialization failed")
	}
	defer sentry.Flush(2 * time.Second)

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *redis.Client
	var drafts services.DraftStore = services.NewMemoryDraftStore()
	if cfg.Redis.Enabled {
		redisClient = middleware.NewRedisClient(cfg.Redis)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logrus.Fatalf("Failed to connect to redis: %v", err)
		}
		drafts = services.NewRedisDraftStore(redisClient, cfg.DraftTTL)
	}

	db := config.DB
	activity := services.NewActivityService(db, services.NewActivityHub())
	roles := services.NewRoleService(db, activity)
	clients := services.NewClientService(db, activity)
	assignments := services.NewAssignmentService(db, activity, cfg.TaskDueDays)
	tasks := services.NewTaskService(db, activity)

	svc := routes.Services{
		Auth:             services.NewAuthService(db, roles, activity),
		Roles:            roles,
		Templates:        services.NewTemplateService(db, activity),
		Assignments:      assignments,
		Teams:            services.NewTeamService(db, activity),
		Agents:           services.NewAgentService(db, activity),
		Packages:         services.NewPackageService(db, activity),
		Clients:          clients,
		Tasks:            tasks,
		TaskCategories:   services.NewTaskCategoryService(db, activity),
		Activity:         activity,
		Onboarding:       services.NewOnboardingService(db, drafts, clients, assignments),
		LoginRateLimit:   cfg.LoginRateLimit,
		RateLimitStorage: middleware.RateLimitStorage(redisClient),
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           3600,
	}))

	routes.SetupRoutes(app, svc)

	// Background workers
	go worker.NewOverdueWorker(tasks, cfg.OverdueSweepInterval, utils.Logger("overdue_worker")).Start(ctx)

	smtp := utils.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.SMTP.FromName,
	}
	if smtp.Enabled() {
		notifier := worker.NewTaskNotifier(tasks, utils.NewMailer(smtp), cfg.AppName, cfg.TaskNotifyInterval, utils.Logger("task_notifier"))
		go notifier.Start(ctx)
	} else {
		logrus.Info("SMTP not configured, task notifications disabled")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logrus.Infof("🚀 Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil && !errors.Is(err, context.Canceled) {
		logrus.Fatalf("Failed to start server: %v", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
