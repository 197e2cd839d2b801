package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/passport-portal/internal/api/http"
	"github.com/spec-kit/passport-portal/internal/api/http/handlers"
	"github.com/spec-kit/passport-portal/internal/auth"
	"github.com/spec-kit/passport-portal/internal/bootstrap"
	"github.com/spec-kit/passport-portal/internal/config"
	"github.com/spec-kit/passport-portal/internal/events"
	"github.com/spec-kit/passport-portal/internal/observability"
	"github.com/spec-kit/passport-portal/internal/persistence"
	"github.com/spec-kit/passport-portal/internal/repository"
	"github.com/spec-kit/passport-portal/internal/service"
	"github.com/spec-kit/passport-portal/internal/storage"
	"github.com/spec-kit/passport-portal/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store, err := storage.NewDocumentStore(cfg.Upload.Dir)
	if err != nil {
		logger.Fatal("failed to init document store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	if err := bootstrap.EnsureAdmin(ctx, userRepo, cfg.Bootstrap, cfg.Session.BcryptCost, logger); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	sessionStore := auth.NewRedisSessionStore(redis.Client)
	sessions := auth.NewSessionManager(sessionStore, cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.TTL())
	sessionMiddleware := auth.NewMiddleware(sessions, userRepo)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(userRepo, sessions, cfg.Session.BcryptCost)
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		ApplicationRepo: applicationRepo,
		DocumentRepo:    documentRepo,
		AppointmentRepo: appointmentRepo,
		PaymentRepo:     paymentRepo,
		Store:           store,
		Dispatcher:      dispatcher,
		Tx:              repository.NewTxManager(pool),
		Logger:          logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.Upload.MaxBytes,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Applications:   handlers.NewApplicationsHandler(applicationService),
		Admin:          handlers.NewAdminHandler(applicationService),
		Uploads:        handlers.NewUploadsHandler(applicationService, store),
		SessionLoading: sessionMiddleware,
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
