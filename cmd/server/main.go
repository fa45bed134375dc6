package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fims-backend/internal/config"
	"fims-backend/internal/database"
	"fims-backend/internal/geocode"
	"fims-backend/internal/handlers"
	"fims-backend/internal/middleware"
	"fims-backend/internal/services"
	"fims-backend/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set. Migrations will be skipped.")
		log.Println("Please set DATABASE_URL environment variable with your Supabase PostgreSQL connection string")
	}

	// Initialize Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	// Geocoding client (credential stays server-side)
	geocoder := geocode.NewClient(cfg.GeocodingAPIBaseURL, cfg.GeocodingAPIKey)

	// Create database client for direct queries
	var dbClient *supabase.DatabaseClient
	if cfg.DatabaseURL != "" {
		dbClient, err = supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize database client: %v", err)
			log.Println("Database operations will be limited. Please configure DATABASE_URL properly.")
		} else {
			defer dbClient.Close()

			// Run migrations
			migrator, err := database.NewMigrator(cfg.DatabaseURL)
			if err != nil {
				log.Printf("Warning: Failed to initialize migrator: %v", err)
			} else {
				defer migrator.Close()
				if err := migrator.Run(); err != nil {
					log.Printf("Warning: Migration failed: %v", err)
				} else {
					log.Println("Migrations completed successfully")
				}
			}
		}
	}

	// Submission workflow (only if dbClient is available)
	var submissionService *services.SubmissionService
	if dbClient != nil {
		submissionService = services.NewSubmissionService(dbClient, storageClient, realtimeClient)
	}

	// Initialize handlers (dbClient might be nil, handlers handle this)
	inspectionsHandler := handlers.NewInspectionsHandler(dbClient, supabaseClient, submissionService)
	categoriesHandler := handlers.NewCategoriesHandler(supabaseClient)
	exportHandler := handlers.NewExportHandler(dbClient)
	locationHandler := handlers.NewLocationHandler(geocoder)

	// Setup router
	router := gin.Default()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.GET("/categories", categoriesHandler.List)

	api.POST("/inspections/submit", inspectionsHandler.Submit)
	api.GET("/inspections", inspectionsHandler.List)
	api.GET("/inspections/export", exportHandler.Export)
	api.GET("/inspections/:inspection_id", inspectionsHandler.Get)
	api.GET("/inspections/:inspection_id/photos", inspectionsHandler.Photos)

	api.POST("/location/reverse-geocode", locationHandler.ReverseGeocode)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
