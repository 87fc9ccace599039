// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/container"
	"github.com/AtRiskMedia/flexibuilder-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/flexibuilder-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/flexibuilder-go/pkg/config"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}
	r.Use(middleware.CORSMiddleware())

	r.Static(config.MediaURLPrefix, config.MediaDir)

	// Initialize handlers
	documentHandlers := handlers.NewDocumentHandlers(container.EditorService, container.Logger, container.PerfTracker)
	commandHandlers := handlers.NewCommandHandlers(container.EditorService, container.Logger, container.PerfTracker)
	exportHandlers := handlers.NewExportHandlers(container.EditorService, container.ExportService, container.Logger, container.PerfTracker)
	generateHandlers := handlers.NewGenerateHandlers(container.LayoutService, container.Logger, container.PerfTracker)
	mediaHandlers := handlers.NewMediaHandlers(container.MediaService, container.Logger, container.PerfTracker)
	catalogHandlers := handlers.NewCatalogHandlers(container.Catalog)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	previewHandlers := handlers.NewPreviewHandlers(container.EditorService, container.Broadcaster, config.CORSOrigins, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container)

	// Published pages are public
	r.GET("/publications/:id", exportHandlers.GetPublication)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandlers.GetHealth)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.GET("/status", authHandlers.GetAuthStatus)
		}

		editor := api.Group("")
		editor.Use(middleware.EditorAuthMiddleware(container.AuthService))
		{
			editor.GET("/catalog", catalogHandlers.GetCatalog)
			editor.GET("/sessions", documentHandlers.GetSessions)
			editor.POST("/generate/preview", generateHandlers.PostGeneratePreview)

			docs := editor.Group("/documents")
			{
				docs.GET("", documentHandlers.GetDocuments)
				docs.POST("", documentHandlers.PostDocument)
				docs.GET("/:id", documentHandlers.GetDocument)
				docs.PATCH("/:id", documentHandlers.PatchDocument)
				docs.DELETE("/:id", documentHandlers.DeleteDocument)
				docs.POST("/:id/save", documentHandlers.PostSave)
				docs.POST("/:id/close", documentHandlers.PostClose)

				docs.POST("/:id/commands", commandHandlers.PostCommand)
				docs.POST("/:id/commands/batch", commandHandlers.PostBatch)
				docs.GET("/:id/panel", commandHandlers.GetPanel)

				docs.GET("/:id/render", exportHandlers.GetRender)
				docs.GET("/:id/export", exportHandlers.GetExport)
				docs.POST("/:id/publish", exportHandlers.PostPublish)

				docs.POST("/:id/generate", generateHandlers.PostGenerate)
				docs.GET("/:id/preview", previewHandlers.GetPreview)
				docs.GET("/:id/metrics", healthHandlers.GetDocumentMetrics)
			}

			media := editor.Group("/media")
			{
				media.GET("", mediaHandlers.GetMedia)
				media.POST("", mediaHandlers.PostMedia)
				media.GET("/orphans", mediaHandlers.GetOrphans)
				media.DELETE("/:id", mediaHandlers.DeleteMedia)
			}
		}
	}

	return r
}
