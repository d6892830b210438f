package main

import (
	"log"
	"os"
	"strings"
	"time"

	"tripgenie/handlers"
	"tripgenie/ratelim"
	"tripgenie/services"
	"tripgenie/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using environment variables")
	}

	// Initialize the trip session store
	session.Init()

	// Initialize third-party adapters
	services.InitAmadeus()
	services.InitWeather()

	// Initialize the LLM itinerary planner
	services.InitPlanner()

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	// CORS — allow configured frontend origins
	frontendURLs := os.Getenv("FRONTEND_URL")
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if frontendURLs != "" {
		for _, u := range strings.Split(frontendURLs, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	limiter := ratelim.New(5, 10)

	// Routes
	api := r.Group("/api")
	api.Use(limiter.Limit())
	{
		api.GET("/health", handlers.HealthHandler)
		api.POST("/generate", handlers.GenerateHandler)
		api.POST("/trips", handlers.CreateTripHandler)
		api.GET("/trips/:token", handlers.GetTripHandler)
		api.GET("/trips/:token/plan", handlers.PlanHandler)
		api.GET("/trips/:token/pdf", handlers.DownloadHandler)
		api.GET("/flights", handlers.FlightsHandler)
		api.GET("/hotels", handlers.HotelsHandler)
		api.GET("/weather", handlers.WeatherHandler)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 TripGenie backend starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
