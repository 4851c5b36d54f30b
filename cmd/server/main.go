package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/config"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/consumer"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/database"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/dispatcher"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/handlers"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/logger"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/rabbitmq"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/routes"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/store"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/tracker"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	// Connect to PostgreSQL and apply migrations
	db, err := database.Connect(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := database.RunMigrations(&cfg.Database, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	st := store.NewGorm(db)

	// Webhook dispatch pipeline: dispatcher + background queue + tracker
	disp := dispatcher.NewDispatcher(st, &http.Client{
		Timeout: time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second,
	}, dispatcher.Config{
		Timeout:         time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second,
		MaxResponseBody: cfg.Webhook.MaxResponseBodySize,
	}, log)

	queue := dispatcher.NewBackground(disp, cfg.Webhook.QueueSize, cfg.Webhook.Workers, log)
	queue.Start()
	defer queue.Stop()

	trk := tracker.NewTracker(st, queue, log)

	// Optional domain-event ingestion from sibling services
	var rmq *rabbitmq.Connection
	if cfg.RabbitMQ.Enabled() {
		rmq = rabbitmq.NewConnection(&cfg.RabbitMQ, log)
		if err := rmq.Connect(); err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rmq.Close()

		ingestor := consumer.NewIngestor(&cfg.RabbitMQ, rmq, trk, log)
		if err := ingestor.Start(); err != nil {
			log.Fatal("Failed to start event ingestor", zap.Error(err))
		}
		defer func() {
			if err := ingestor.Stop(); err != nil {
				log.Error("Error stopping event ingestor", zap.Error(err))
			}
		}()
	} else {
		log.Info("RabbitMQ not configured, event ingestion disabled")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "FlowBoard Webhooks",
		ServerHeader: "Fiber",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Setup routes
	routes.SetupRoutes(
		app,
		handlers.NewHealthHandler(db, rmq),
		handlers.NewEndpointsHandler(st, log),
		handlers.NewDeliveriesHandler(st, log),
		handlers.NewEventsHandler(trk, log),
	)

	// Start server in a goroutine
	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		log.Info("Server starting",
			zap.String("address", addr),
		)
		if err := app.Listen(addr); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error("Error during server shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
