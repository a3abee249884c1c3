package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"typing-test-system/handlers"
	"typing-test-system/middleware"
	"typing-test-system/models"
	"typing-test-system/services"
	"typing-test-system/utils"
	"typing-test-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultRetentionDays = 90

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — batch keystroke payloads are small
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.KeystrokeEvent{},
		&models.TypingScore{},
		&models.Passage{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Archive storage is optional: without R2 credentials, GDPR deletions
	// proceed without a safety copy and exports return 503.
	var exportService *services.ExportService
	keystrokeStore := services.NewGormKeystrokeStore(db)
	if err := utils.InitR2(); err != nil {
		log.Printf("⚠️  R2 disabled: %v", err)
	} else {
		exportService = services.NewExportService(keystrokeStore)
	}

	keystrokeService := services.NewKeystrokeService(keystrokeStore, exportService)
	biometricsService := services.NewBiometricsService(keystrokeStore)
	scoreService := services.NewScoreService(db)
	passageService := services.NewPassageService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	retentionDays := defaultRetentionDays
	if raw := os.Getenv("RETENTION_DAYS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatal("RETENTION_DAYS must be an integer")
		}
		retentionDays = parsed
	}
	retentionWorker := workers.NewRetentionWorker(db, retentionDays)
	go func() {
		log.Println("Starting Keystroke Retention Worker...")
		retentionWorker.Start(ctx)
	}()

	passageService.StartPublishScheduler()

	// ✅ Setup routes — gateway auth enforced globally
	handlers.SetupKeystrokeRoutes(app, keystrokeService)
	handlers.SetupBiometricsRoutes(app, biometricsService)
	handlers.SetupScoreRoutes(app, scoreService, passageService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Keystroke Retention Worker running (hourly)")
	log.Println("✅ Passage publish scheduler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
