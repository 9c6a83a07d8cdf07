package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/expendio/foh-app/config"
	"github.com/expendio/foh-app/hub"
	"github.com/expendio/foh-app/middlewares"
	"github.com/expendio/foh-app/models"
	"github.com/expendio/foh-app/router"
	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	floorHub := hub.New(utils.InfoLogger)
	floor := services.NewFloorService(db, floorHub)
	if err := floor.SeedTables(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed tables: %v", err)
	}

	janitor := services.NewJanitor(floor)
	if secs, err := strconv.Atoi(os.Getenv("JANITOR_INTERVAL")); err == nil && secs > 0 {
		janitor.Interval = time.Duration(secs) * time.Second
	}
	janitor.Start()
	defer janitor.Stop()

	otp := services.NewOTPService(db)
	otp.StartSweeper()
	defer otp.Stop()

	r := router.SetupRouter(router.Deps{
		Floor:    floor,
		OTP:      otp,
		Reports:  services.NewReportService(db),
		Insights: services.NewInsightsService(),
		Hub:      floorHub,
	})

	// Global limiter: 50 requests per second per IP.
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Table{},
		&models.Customer{},
		&models.Visit{},
		&models.Reservation{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
