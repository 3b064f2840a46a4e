package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/notify"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/storage"
	"github.com/spec-kit/support-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	uploader, err := storage.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	roleRepo := repository.NewRoleRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewTicketCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	installationRepo := repository.NewInstallationRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	registry := authz.NewRegistry()
	evaluator := authz.NewEvaluator(roleRepo)
	recorder := service.NewAuditRecorder(auditRepo, logger)
	dispatcher := events.NewInMemoryDispatcher()

	emailSender := notify.NewLogEmailSender(cfg.Notification, logger)
	whatsappSender := notify.NewLogWhatsAppSender(cfg.Notification, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	roleService := service.NewRoleService(roleRepo, evaluator, registry, recorder, logger)
	if err := roleService.SeedDefaults(ctx); err != nil {
		logger.Fatal("failed to seed roles", zap.Error(err))
	}

	userService := service.NewUserService(userRepo, roleRepo, evaluator, recorder, logger, cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, tokenManager, rdb.Client, emailSender, logger,
		cfg.Auth.BcryptCost, cfg.Auth.PasswordResetTTLMinutes)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		AssignmentRepo: assignmentRepo,
		UserRepo:       userRepo,
		Evaluator:      evaluator,
		Recorder:       recorder,
		Uploader:       uploader,
		Dispatcher:     dispatcher,
		Policy:         cfg.Ticket,
	})
	customerService := service.NewCustomerService(customerRepo, ticketRepo, evaluator, recorder)
	inventoryService := service.NewInventoryService(inventoryRepo, ticketRepo, evaluator, recorder, dispatcher)
	installationService := service.NewInstallationService(installationRepo, customerRepo, userRepo,
		evaluator, recorder, uploader, dispatcher)
	dashboardService := service.NewDashboardService(ticketRepo, inventoryRepo, evaluator, rdb.Client, logger)
	activityService := service.NewActivityService(recorder, evaluator)

	notificationService := service.NewNotificationService(userRepo, roleRepo, emailSender, whatsappSender, logger)
	notificationService.RegisterHandlers(dispatcher)

	reportWorker := worker.NewReportWorker(ticketRepo, inventoryRepo, dispatcher, logger, cfg.Reports)
	if err := reportWorker.Start(); err != nil {
		logger.Fatal("failed to start report worker", zap.Error(err))
	}
	defer reportWorker.Stop()

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 25 * 1024 * 1024,
	})
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.App.CORSOrigins}))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.IsProduction())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pool, rdb.Client, cfg.App.Version),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService, cfg.Pagination),
		Roles:          handlers.NewRolesHandler(roleService, registry),
		Tickets:        handlers.NewTicketsHandler(ticketService, cfg.Pagination),
		Customers:      handlers.NewCustomersHandler(customerService, cfg.Pagination),
		Inventory:      handlers.NewInventoryHandler(inventoryService, cfg.Pagination),
		Installations:  handlers.NewInstallationsHandler(installationService, cfg.Pagination),
		Dashboard:      handlers.NewDashboardHandler(dashboardService, activityService, cfg.Pagination),
		AuthMiddleware: authMiddleware,
		Evaluator:      evaluator,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
