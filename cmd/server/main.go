package main

import (
	"log"
	"time"

	"rentwheels-backend/internal/api/routes"
	"rentwheels-backend/internal/config"
	"rentwheels-backend/internal/events"
	"rentwheels-backend/internal/repository"
	"rentwheels-backend/pkg/cleanup"
	"rentwheels-backend/pkg/database"
	"rentwheels-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to MongoDB
	db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Disconnect(db.Client())

	// Bootstrap collection indexes
	if err := repository.NewUserRepository(db).CreateIndexes(); err != nil {
		log.Printf("Failed to create user indexes: %v", err)
	}
	if err := repository.NewVehicleRepository(db).CreateIndexes(); err != nil {
		log.Printf("Failed to create vehicle indexes: %v", err)
	}
	if err := repository.NewBookingRepository(db).CreateIndexes(); err != nil {
		log.Printf("Failed to create booking indexes: %v", err)
	}
	if err := repository.NewReviewRepository(db).CreateIndexes(); err != nil {
		log.Printf("Failed to create review indexes: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(cfg.Redis)
	defer redisClient.Close()

	healthStatus := redisClient.HealthCheck()
	if healthStatus.IsConnected {
		log.Printf("Redis connected successfully at %s", healthStatus.ConnectionInfo)
	} else {
		log.Printf("Redis connection failed: %s (will retry automatically)", healthStatus.Error)
	}

	// Start the change notification manager
	manager := events.NewManager()
	if err := manager.Start(); err != nil {
		log.Fatal("Failed to start event manager:", err)
	}
	defer manager.Stop()

	// Background sweep of expired password reset tokens
	cleanupService := cleanup.NewCleanupService(repository.NewUserRepository(db), time.Hour)
	go cleanupService.Start()
	defer cleanupService.Stop()

	// Setup Gin router
	router := gin.Default()

	// CORS middleware
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Upgrade", "Connection", "Sec-WebSocket-Key", "Sec-WebSocket-Version", "Sec-WebSocket-Protocol"},
		ExposeHeaders: []string{"Content-Length"},
	}

	// Handle wildcard origin for development
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false // Cannot use credentials with AllowAllOrigins
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}

	router.Use(cors.New(corsConfig))

	// Setup routes
	routes.SetupRoutes(router, db, redisClient, manager, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}
