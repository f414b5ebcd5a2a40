package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"barangaylink/internal/adapters/http/middleware"
	"barangaylink/internal/adapters/http/routes"
	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/adapters/realtime"
	"barangaylink/internal/config"
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "barangaylink/docs" // Swagger docs
)

// @title BarangayLink API
// @version 1.0
// @description Community services platform for barangay residents: requests, events, donations, volunteers and emergency alerts.

// @contact.name BarangayLink Support

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("❌ Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.Fatalf("❌ Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	logger.Infof("✅ Database migration completed")

	if err := config.NewSeeder(db, cfg.Admin).Run(); err != nil {
		logger.Warnf("⚠️ Warning: Failed to seed data: %v", err)
	}

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		logger.Fatalf("❌ Failed to create upload dir: %v", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Live notifications
	hub := realtime.NewHub(collector)
	go hub.Run()

	repos := repositories.New(db)
	svc := services.New(repos, cfg, hub, collector)

	// Scheduled jobs: refresh-token purge and event reminders
	var cronService *services.CronService
	if cfg.Jobs.Enabled {
		cronService = services.NewCronService(svc.Auth, svc.Events, collector)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("❌ Failed to start scheduler: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BarangayLink API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    cfg.Upload.MaxBytes + 1<<20,
		ReadTimeout:  30 * time.Second,
	})

	// Setup middlewares
	middleware.Setup(app, cfg, collector)

	// Setup routes
	routes.Setup(app, routes.Deps{
		DB:       db,
		Config:   cfg,
		Services: svc,
		Hub:      hub,
		Gatherer: registry,
	})

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	logger.Infof("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Errorf("❌ Failed to start server: %v", err)
	}

	if cronService != nil {
		cronService.Stop()
	}
	hub.Stop()
	if err := config.CloseDatabase(); err != nil {
		logger.Errorf("❌ Error closing database: %v", err)
	}
	logger.Infof("✅ Server stopped gracefully")
}

// gracefulShutdown stops the listener on SIGINT/SIGTERM so main can release resources
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Errorf("❌ Error during shutdown: %v", err)
	}
}
