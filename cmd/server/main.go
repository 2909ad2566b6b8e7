package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/antirek/bank/config"
	"github.com/antirek/bank/internal/app/controller"
	"github.com/antirek/bank/internal/app/repository"
	"github.com/antirek/bank/internal/app/service"
	"github.com/antirek/bank/internal/db"
	"github.com/antirek/bank/internal/middleware"
	"github.com/antirek/bank/internal/router"
	"github.com/antirek/bank/internal/scheduler"
	"github.com/antirek/bank/internal/storage"
	"github.com/antirek/bank/pkg/logger"
	"github.com/antirek/bank/pkg/messaging"
	"github.com/antirek/bank/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Bank API Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to connect to Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	messagingClient, err := messaging.NewClient(messaging.Config{
		BaseURL:  cfg.Messaging.BaseURL,
		APIKey:   cfg.Messaging.APIKey,
		TenantID: cfg.Messaging.TenantID,
		Timeout:  cfg.Messaging.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to configure messaging client", err)
	}

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	businessRepo := repository.NewBusinessRepository(db.GetDB())
	subscriptionRepo := repository.NewSubscriptionRepository(db.GetDB())
	dialogRepo := repository.NewDialogRepository(db.GetDB())
	codeRepo := repository.NewCodeRepository(redis.GetClient())

	// Services
	provisionService := service.NewProvisionService(userRepo, businessRepo, messagingClient)
	authService := service.NewAuthService(
		userRepo,
		codeRepo,
		provisionService,
		cfg.JWT,
		cfg.Server.Environment == "development",
	)
	userService := service.NewUserService(userRepo, provisionService)
	businessService := service.NewBusinessService(businessRepo, userRepo, provisionService)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, businessRepo, userRepo, messagingClient)
	dialogService := service.NewDialogService(dialogRepo, businessRepo, userRepo, messagingClient)

	// Controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService)
	businessController := controller.NewBusinessController(businessService)
	subscriptionController := controller.NewSubscriptionController(subscriptionService)
	dialogController := controller.NewDialogController(dialogService)
	uploadController := controller.NewUploadController(s3Storage)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authController,
		userController,
		businessController,
		subscriptionController,
		dialogController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	provisionScheduler := scheduler.NewProvisionScheduler(provisionService)
	if err := provisionScheduler.Start(); err != nil {
		logger.Fatal("Failed to start provisioning scheduler", err)
	}
	defer provisionScheduler.Stop()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
}
