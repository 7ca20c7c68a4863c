package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/viraltrack/viraltrack-backend/internal/http/handlers"
	httpMW "github.com/viraltrack/viraltrack-backend/internal/http/middleware"
)

type RouterConfig struct {
	ServiceName string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	KeywordHandler   *httpH.KeywordHandler
	VideoHandler     *httpH.VideoHandler
	JobHandler       *httpH.JobHandler
	DashboardHandler *httpH.DashboardHandler
	SettingsHandler  *httpH.SettingsHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.AuthHandler != nil {
			protected.GET("/auth/me", cfg.AuthHandler.GetMe)
			protected.PUT("/auth/me", cfg.AuthHandler.UpdateMe)
		}

		// Keywords
		if cfg.KeywordHandler != nil {
			protected.GET("/keywords", cfg.KeywordHandler.List)
			protected.POST("/keywords", cfg.KeywordHandler.Create)
			protected.POST("/keywords/bulk", cfg.KeywordHandler.CreateBulk)
			protected.PUT("/keywords/:id", cfg.KeywordHandler.Update)
			protected.DELETE("/keywords/:id", cfg.KeywordHandler.Delete)
		}

		// Videos
		if cfg.VideoHandler != nil {
			protected.GET("/videos", cfg.VideoHandler.List)
			protected.GET("/videos/recent", cfg.VideoHandler.ListRecent)
			protected.GET("/videos/pending", cfg.VideoHandler.ListPending)
			protected.GET("/videos/search", cfg.VideoHandler.Search)
			protected.GET("/videos/:id", cfg.VideoHandler.Get)
			protected.DELETE("/videos/:id", cfg.VideoHandler.Delete)
			protected.GET("/keywords/:id/videos", cfg.VideoHandler.ListByKeyword)
		}

		// Scrape + transcription jobs
		if cfg.JobHandler != nil {
			protected.POST("/scrape/start", cfg.JobHandler.StartScrape)
			protected.GET("/scrape/jobs", cfg.JobHandler.ListJobs)
			protected.GET("/scrape/jobs/:id", cfg.JobHandler.GetJob)
			protected.POST("/videos/:id/transcribe", cfg.JobHandler.Transcribe)
			protected.POST("/videos/transcribe-pending", cfg.JobHandler.TranscribeAllPending)
		}

		// Dashboard
		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard/stats", cfg.DashboardHandler.Stats)
			protected.GET("/dashboard/stats/platforms", cfg.DashboardHandler.StatsByPlatform)
			protected.GET("/dashboard/stats/keywords", cfg.DashboardHandler.StatsByKeyword)
		}

		// Settings
		if cfg.SettingsHandler != nil {
			protected.GET("/settings", cfg.SettingsHandler.Get)
			protected.PUT("/settings", cfg.SettingsHandler.Update)
			protected.POST("/settings/sheet", cfg.SettingsHandler.ConnectSheet)
		}
	}

	return r
}
