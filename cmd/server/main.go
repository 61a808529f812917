package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/backdrop/placement-market/internal/config"
	"github.com/backdrop/placement-market/internal/database"
	"github.com/backdrop/placement-market/internal/events"
	"github.com/backdrop/placement-market/internal/handlers"
	"github.com/backdrop/placement-market/internal/logging"
	"github.com/backdrop/placement-market/internal/metrics"
	"github.com/backdrop/placement-market/internal/middleware"
	"github.com/backdrop/placement-market/internal/routes"
	"github.com/backdrop/placement-market/internal/services"
	"github.com/backdrop/placement-market/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	stdout := logging.Setup()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err.Error())
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	// Database
	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err.Error())
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err.Error())
		os.Exit(1)
	}

	// Database log sink (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetention, cleanupDone)

	// Lifecycle events
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		slog.Info("bid events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicUploadURL)
	if err != nil {
		slog.Error("upload store init failed", "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Services
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := services.NewAuthService(db, tokens)
	projectService := services.NewProjectService(db, files)
	slotService := services.NewSlotService(db)
	skuService := services.NewSKUService(db, files)
	bidService := services.NewBidService(db, publisher, m, cfg.BidWriteRetries)
	financeService := services.NewFinanceService(db, cfg.MarginRate)
	auditService := services.NewAuditService(db)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err.Error())
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, authService, m, prometheus.DefaultGatherer, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Health:   handlers.NewHealthHandler(db),
		Projects: handlers.NewProjectHandler(projectService),
		Slots:    handlers.NewSlotHandler(slotService),
		SKUs:     handlers.NewSKUHandler(skuService),
		Bids:     handlers.NewBidHandler(bidService),
		Finance:  handlers.NewFinanceHandler(financeService, auditService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err.Error())
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err.Error())
	}

	if err := publisher.Close(); err != nil {
		slog.Error("event publisher close error", "error", err.Error())
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err.Error())
	}

	slog.Info("server stopped")
}
