package main

import (
	"context"
	"time"

	"qr-trackr-be/internal/cache"
	"qr-trackr-be/internal/config"
	"qr-trackr-be/internal/content"
	"qr-trackr-be/internal/controllers"
	"qr-trackr-be/internal/database"
	"qr-trackr-be/internal/jwt"
	"qr-trackr-be/internal/logger"
	"qr-trackr-be/internal/middleware"
	"qr-trackr-be/internal/qrimage"
	"qr-trackr-be/internal/repository"
	"qr-trackr-be/internal/service"
	"qr-trackr-be/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.Env)

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var cacheClient cache.Cache
	cacheClient, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis. Continuing without cache.")
		cacheClient = nil
	} else {
		logger.Info().Msg("Connected to Redis cache")
	}

	// Initialize the QR asset store
	var store storage.ObjectStore
	switch cfg.StorageBackend {
	case "s3":
		store, err = storage.NewS3Store(context.Background(), storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		store, err = storage.NewFSStore(cfg.AssetDir, cfg.AssetBaseURL)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize asset storage")
	}

	// Initialize repositories and collaborators
	linkRepo := repository.NewLinkRepository(db)
	contentResolver := content.NewHTTPResolver(cfg.ContentAPIURL)
	renderer := qrimage.NewRenderer(store, qrimage.DefaultShapes())
	issuer := service.NewCodeIssuer(linkRepo)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	// Initialize services
	renderOpts := qrimage.Options{
		Size:       cfg.QRSize,
		Shape:      cfg.QRShape,
		Foreground: cfg.QRFgColor,
		Background: cfg.QRBgColor,
	}
	linkService := service.NewLinkService(linkRepo, cacheClient, issuer, contentResolver, renderer, cfg.BaseURL, renderOpts)
	resolverService := service.NewResolverService(linkRepo, cacheClient, contentResolver)
	authService := service.NewAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, jwtService)

	// Initialize controllers
	linkController := controllers.NewLinkController(linkService, cfg.BaseURL)
	redirectController := controllers.NewRedirectController(resolverService)
	qrcodeController := controllers.NewQRCodeController(linkService)
	authController := controllers.NewAuthController(authService)

	// Initialize rate limiters
	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	createRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitCreateRPS), cfg.RateLimitCreateBurst)
	scanRateLimiter := middleware.NewRateLimiter(rate.Limit(30.0), 60) // More lenient for scans (30 req/s, burst 60)

	// Create a Gin router
	router := gin.Default()

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Serve QR assets directly when using the filesystem backend
	if cfg.StorageBackend != "s3" {
		router.Static("/assets/qr", cfg.AssetDir)
	}

	// Public scan endpoint with lenient rate limiting
	router.GET("/:code", scanRateLimiter.LimitMiddleware(), redirectController.Redirect)

	// API v1 routes group with general rate limiting
	api := router.Group("/api/v1")
	api.Use(generalRateLimiter.LimitMiddleware())
	{
		// Auth routes with stricter rate limiting
		auth := api.Group("/auth")
		auth.Use(authRateLimiter.LimitMiddleware())
		{
			auth.POST("/login", authController.Login)
		}

		// Protected admin routes - require JWT authentication
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))
		{
			// Link creation with stricter rate limiting
			protected.POST("/links", createRateLimiter.LimitMiddleware(), linkController.CreateLink)
			protected.POST("/links/content/:ref", createRateLimiter.LimitMiddleware(), linkController.GetOrCreateForContent)

			// Other link routes (use general rate limiting from group)
			protected.GET("/links", linkController.ListLinks)
			protected.GET("/links/content/:ref", linkController.ListForContent)
			protected.GET("/links/:id", linkController.GetLink)
			protected.PATCH("/links/:id", linkController.UpdateDestination)
			protected.DELETE("/links/:id", linkController.DeleteLink)
			protected.POST("/links/:id/qr/regenerate", qrcodeController.RegenerateQRCode)
		}

		// QR image serve is public so admin screens can embed it directly
		api.GET("/links/:id/qr", qrcodeController.GetQRCode)
	}

	// Start the server on port 8080
	logger.Info().Msg("Server starting on http://localhost:8080")
	router.Run(":8080")
}
