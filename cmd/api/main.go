package main

import (
	"fmt"
	"log"

	"waitlist-prediction-api/config"
	"waitlist-prediction-api/handlers"
	"waitlist-prediction-api/middleware"
	"waitlist-prediction-api/models"
	"waitlist-prediction-api/predictor"
	"waitlist-prediction-api/scraper"
	"waitlist-prediction-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get sql db handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Train{},
		&models.ScheduleStop{},
		&models.AvailabilitySnapshot{},
		&models.User{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis cache (degraded mode if unreachable)
	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, running without cache: %v", err)
	}
	defer cache.Close()

	// Prediction service: load the artifact now, train lazily otherwise
	var calendar predictor.HolidayCalendar = predictor.NeverHoliday{}
	if len(cfg.Calendar.HolidayDates) > 0 {
		calendar = predictor.NewDateListCalendar(cfg.Calendar.HolidayDates)
	}
	predictionService := predictor.New(predictor.Options{
		ArtifactPath: cfg.Model.ArtifactPath,
		CorpusSize:   cfg.Model.CorpusSize,
		Forest: predictor.ForestOptions{
			TreeCount: cfg.Model.TreeCount,
			Seed:      cfg.Model.SplitSeed,
		},
		Calendar: calendar,
	})
	if err := predictionService.Load(); err != nil {
		log.Fatalf("Failed to load model artifact: %v", err)
	}

	// Metadata enrichment
	store := services.NewGormTrainStore(db)
	provider := scraper.NewProvider(cfg.Provider.BaseURL, cfg.Provider.Timeout)
	enrichment := services.NewEnrichmentOrchestrator(store, provider, cfg.Provider.Timeout)

	availability := services.NewAvailabilityService(db, cache, nil)
	authService := services.NewAuthService(cfg.JWT)

	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "UP",
			"message": "Waitlist Prediction API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	predictionHandler := handlers.NewPredictionHandler(predictionService, enrichment, cache)
	trainsHandler := handlers.NewTrainsHandler(store, enrichment, cache)
	availabilityHandler := handlers.NewAvailabilityHandler(db, availability)
	authHandler := handlers.NewAuthHandler(db, authService)

	api := router.Group("/api/v1")
	{
		api.POST("/predictions", predictionHandler.Predict)
		api.GET("/trains/:train_no", trainsHandler.GetTrain)
		api.GET("/trains/:train_no/schedule", trainsHandler.GetSchedule)
		api.GET("/availability", availabilityHandler.GetSnapshots)
		api.POST("/trains/:train_no/availability/refresh", availabilityHandler.RefreshSnapshots)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
	}

	router.GET("/ws/live", handlers.LiveWebSocket(cache, authService))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
