// File: /main.go
package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"runcrew-api/config"
	"runcrew-api/database"
	"runcrew-api/jobs"
	"runcrew-api/routes"
	"runcrew-api/services"
	"runcrew-api/websocket"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Redis cache for unread notification counters
	cache := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Websocket hub for real-time notification delivery
	hub := websocket.NewHub()
	go hub.Run()

	emailService := services.NewEmailService(cfg)
	notificationService := services.NewNotificationService(db, hub, cache, emailService)

	// Drain committed domain events to the event stream
	publisher := services.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	relayer := jobs.NewOutboxRelayerJob(db, publisher, 5*time.Second)
	relayer.Start()
	defer relayer.Stop()

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.Default()

	// Setup CORS middleware
	router.Use(routes.SetupCORS())

	// Setup routes
	routes.SetupRoutes(router, db, cfg, hub, notificationService)

	// Start server
	log.Printf("Starting RunCrew API server on port %s", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
