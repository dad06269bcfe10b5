package api

import (
	"github.com/gin-gonic/gin"
	"github.com/ilmari/storydesk/internal/api/handler"
	"github.com/ilmari/storydesk/internal/api/middleware"
	"github.com/ilmari/storydesk/internal/config"
	"github.com/ilmari/storydesk/internal/logger"
	"github.com/ilmari/storydesk/internal/repository"
	"github.com/ilmari/storydesk/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	cfg *config.Config,
	log *logger.Logger,
	storyService *service.StoryService,
	mediaService *service.MediaService,
	categoryRepo *repository.CategoryRepository,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))
	r.Use(middleware.Metrics("storydesk-api"))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	storyHandler := handler.NewStoryHandler(storyService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	categoryHandler := handler.NewCategoryHandler(categoryRepo)

	// Health check and metrics
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Stories
		v1.GET("/stories", storyHandler.List)
		v1.POST("/stories", storyHandler.Create)
		v1.GET("/stories/counts", storyHandler.Counts)
		v1.GET("/stories/:id", storyHandler.Get)
		v1.PATCH("/stories/:id", storyHandler.Update)
		v1.DELETE("/stories/:id", storyHandler.Delete)
		v1.POST("/stories/:id/duplicate", storyHandler.Duplicate)

		// Categories
		v1.GET("/categories", categoryHandler.List)
		v1.POST("/categories", categoryHandler.Create)

		// Media
		v1.GET("/media", mediaHandler.Search)
		v1.GET("/media/library", mediaHandler.Library)
	}

	return r
}
