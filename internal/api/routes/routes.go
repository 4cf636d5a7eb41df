package routes

import (
	"log"

	"rentwheels-backend/internal/api/handlers"
	"rentwheels-backend/internal/api/middleware"
	"rentwheels-backend/internal/config"
	"rentwheels-backend/internal/events"
	"rentwheels-backend/internal/repository"
	"rentwheels-backend/internal/services"
	"rentwheels-backend/pkg/cache"
	"rentwheels-backend/pkg/email"
	"rentwheels-backend/pkg/jwt"
	"rentwheels-backend/pkg/ratelimit"
	"rentwheels-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func SetupRoutes(router *gin.Engine, db *mongo.Database, redisClient *redis.Client, manager *events.Manager, cfg *config.Config) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Initialize services
	jwtService := jwt.NewJWTService()
	authService := services.NewAuthService(userRepo, jwtService)
	userService := services.NewUserService(userRepo, vehicleRepo)
	vehicleService := services.NewVehicleService(vehicleRepo)
	bookingService := services.NewBookingService(bookingRepo, vehicleRepo, userRepo)
	reviewService := services.NewReviewService(reviewRepo, bookingRepo, vehicleRepo)

	// Wire change notifications
	vehicleService.SetPublisher(manager)
	bookingService.SetPublisher(manager)
	reviewService.SetPublisher(manager)

	// Wire catalog caching
	if redisClient != nil {
		vehicleService.SetCacheManager(cache.NewDefaultCacheManager(redisClient))
	}

	// Wire outgoing mail when SMTP is configured
	if cfg.SMTP.Host != "" {
		emailService := email.NewEmailService(
			cfg.SMTP.Host, cfg.SMTP.Port,
			cfg.SMTP.Username, cfg.SMTP.Password,
			cfg.SMTP.FromEmail, cfg.SMTP.FromName,
			cfg.AppURL,
		)
		authService.SetEmailService(emailService)
		bookingService.SetEmailService(emailService)
	} else {
		log.Println("SMTP not configured, outgoing mail disabled")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService, reviewService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(bookingService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	wsHandler := handlers.NewWebSocketHandler(manager)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// Rate limiting backed by Redis, in-memory fallback
	var limiter ratelimit.RateLimiter
	if redisClient != nil && redisClient.IsConnected() {
		limiter = ratelimit.NewRedisRateLimiter(redisClient.GetClient(), nil)
	} else {
		limiter = ratelimit.NewMemoryRateLimiter(nil)
	}

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(limiter))

	api.GET("/health", healthHandler.HealthCheck)

	// WebSocket endpoint, token checked inside the handler
	api.GET("/ws", wsHandler.HandleWebSocket)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// Catalog reads are public
	api.GET("/vehicles", vehicleHandler.GetVehicles)
	api.GET("/vehicles/:id", vehicleHandler.GetVehicle)
	api.GET("/vehicles/:id/reviews", reviewHandler.GetVehicleReviews)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)

		// Bookings
		bookings := protected.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.POST("/check-conflict", bookingHandler.CheckConflict)
			bookings.GET("/my", bookingHandler.GetMyBookings)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
		}

		// Payments (mocked gateway)
		payments := protected.Group("/payments")
		{
			payments.POST("/initiate", paymentHandler.InitiatePayment)
			payments.POST("/:id/verify", paymentHandler.VerifyPayment)
		}

		// Reviews
		protected.POST("/vehicles/:id/reviews", reviewHandler.AddReview)
		protected.DELETE("/reviews/:id", reviewHandler.DeleteReview)

		// Wishlist
		wishlist := protected.Group("/wishlist")
		{
			wishlist.GET("", userHandler.GetWishlist)
			wishlist.POST("/:id", userHandler.AddToWishlist)
			wishlist.DELETE("/:id", userHandler.RemoveFromWishlist)
		}

		// Admin routes
		admin := protected.Group("/")
		admin.Use(middleware.AdminRequired())
		{
			// Catalog management
			admin.POST("/vehicles", vehicleHandler.CreateVehicle)
			admin.PATCH("/vehicles/:id", vehicleHandler.UpdateVehicle)
			admin.PATCH("/vehicles/:id/availability", vehicleHandler.SetAvailability)
			admin.DELETE("/vehicles/:id", vehicleHandler.DeleteVehicle)

			// Booking management
			admin.GET("/bookings", bookingHandler.GetAllBookings)
			admin.PATCH("/bookings/:id/status", bookingHandler.UpdateBookingStatus)
			admin.GET("/bookings/stats", bookingHandler.GetBookingStats)

			// Review moderation
			admin.GET("/reviews", reviewHandler.GetAllReviews)
			admin.POST("/reviews/:id/reply", reviewHandler.ReplyToReview)

			// User management
			admin.GET("/users", userHandler.GetUsers)
			admin.GET("/users/:id", userHandler.GetUser)
			admin.PATCH("/users/:id/block", userHandler.BlockUser)
			admin.PATCH("/users/:id/unblock", userHandler.UnblockUser)
			admin.DELETE("/users/:id", userHandler.DeleteUser)

			// WebSocket administration
			admin.GET("/ws/stats", wsHandler.GetConnectedClients)
			admin.DELETE("/ws/clients/:clientId", wsHandler.DisconnectClient)
		}
	}
}
