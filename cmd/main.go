package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/viraltrack/viraltrack-backend/internal/db"
	apphttp "github.com/viraltrack/viraltrack-backend/internal/http"
	"github.com/viraltrack/viraltrack-backend/internal/http/handlers"
	"github.com/viraltrack/viraltrack-backend/internal/http/middleware"
	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/observability"
	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/services"
	"github.com/viraltrack/viraltrack-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
	serverAddr := utils.GetEnv("SERVER_ADDR", ":8080", log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "viraltrack-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	keywordRepo := repos.NewKeywordRepo(thePG, log)
	videoRepo := repos.NewVideoRepo(thePG, log)
	scrapeJobRepo := repos.NewScrapeJobRepo(thePG, log)
	userSettingsRepo := repos.NewUserSettingsRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	mirror, err := services.NewGoogleSheetMirror(log)
	if err != nil {
		log.Warn("Sheet mirror unavailable, continuing without it", "error", err)
		mirror = services.NewNoopSheetMirror(log)
	}
	searchProvider, err := services.NewApifySearchProvider(log)
	if err != nil {
		log.Error("Could not init search provider", "error", err)
		os.Exit(1)
	}
	mediaTools := services.NewMediaToolsService(log)
	speechProvider, err := services.NewSpeechProviderService(log)
	if err != nil {
		log.Error("Could not init speech provider", "error", err)
		os.Exit(1)
	}
	defer speechProvider.Close()
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Bucket unavailable, long audio will be sent inline", "error", err)
		bucketService = nil
	}

	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	settingsService := services.NewSettingsService(thePG, log, userSettingsRepo, userRepo, mirror)
	keywordService := services.NewKeywordService(thePG, log, keywordRepo)
	videoService := services.NewVideoService(thePG, log, videoRepo, keywordRepo)
	ingestService := services.NewIngestService(thePG, log, videoRepo)
	jobService := services.NewScrapeJobService(thePG, log, scrapeJobRepo, userRepo, keywordRepo, settingsService, searchProvider, ingestService, mirror)
	transcriptionService := services.NewTranscriptionService(thePG, log, videoRepo, userRepo, mediaTools, speechProvider, bucketService, mirror)
	dashboardCache := services.NewDashboardCache(log)
	dashboardService := services.NewDashboardService(thePG, log, videoRepo, keywordRepo, scrapeJobRepo, dashboardCache)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService, userService)
	keywordHandler := handlers.NewKeywordHandler(keywordService)
	videoHandler := handlers.NewVideoHandler(videoService)
	jobHandler := handlers.NewJobHandler(jobService, transcriptionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	healthHandler := handlers.NewHealthHandler()
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Server
	srv := apphttp.NewServer(apphttp.RouterConfig{
		ServiceName:      "viraltrack-backend",
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		KeywordHandler:   keywordHandler,
		VideoHandler:     videoHandler,
		JobHandler:       jobHandler,
		DashboardHandler: dashboardHandler,
		SettingsHandler:  settingsHandler,
		HealthHandler:    healthHandler,
	})

	log.Info("Starting server", "addr", serverAddr)
	if err := srv.Run(serverAddr); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
