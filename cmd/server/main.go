package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/municipio/patentes-backend/config"
	"github.com/municipio/patentes-backend/internal/app/controller"
	"github.com/municipio/patentes-backend/internal/app/repository"
	"github.com/municipio/patentes-backend/internal/app/service"
	"github.com/municipio/patentes-backend/internal/db"
	"github.com/municipio/patentes-backend/internal/middleware"
	"github.com/municipio/patentes-backend/internal/router"
	"github.com/municipio/patentes-backend/internal/scheduler"
	"github.com/municipio/patentes-backend/internal/storage"
	"github.com/municipio/patentes-backend/internal/websocket"
	"github.com/municipio/patentes-backend/pkg/logger"
	"github.com/municipio/patentes-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Patentes Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional. Without it the overview endpoint recomputes on
	// every call.
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, overview caching disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer redis.Close()
	}

	// Initialize repositories
	representativeRepo := repository.NewRepresentativeRepository(db.GetDB())
	localRepo := repository.NewLocalRepository(db.GetDB())
	memoRepo := repository.NewMemoRepository(db.GetDB())

	// WebSocket hub for import progress
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	authService := service.NewAuthService(cfg.Admin, cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	importService := service.NewImportService(representativeRepo, localRepo, memoRepo, cfg.Import, hub)
	exportService := service.NewExportService(memoRepo, cfg.Import.PageSize)
	memoService := service.NewMemoService(memoRepo, localRepo, representativeRepo)

	// Optional S3 archive of uploaded workbooks
	archive := storage.NewArchiveStorage(cfg.Archive)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	excelController := controller.NewExcelController(importService, exportService, archive)
	memoController := controller.NewMemoController(memoService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Keep the dashboard counts warm
	statsScheduler := scheduler.NewStatsScheduler(memoService)
	if err := statsScheduler.Start(); err != nil {
		logger.Warn("Stats scheduler disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer statsScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		excelController,
		memoController,
		hub,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
