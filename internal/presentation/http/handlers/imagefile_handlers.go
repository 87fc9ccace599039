package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
)

// MediaHandlers contains image upload handlers
type MediaHandlers struct {
	media       *services.MediaService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewMediaHandlers creates media handlers with injected dependencies
func NewMediaHandlers(media *services.MediaService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MediaHandlers {
	return &MediaHandlers{media: media, logger: logger, perfTracker: perfTracker}
}

// UploadRequest carries a base64 data URL.
type UploadRequest struct {
	Data string `json:"data" binding:"required"`
}

// PostMedia handles POST /api/v1/media
func (h *MediaHandlers) PostMedia(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	res, err := h.media.Upload(c.Request.Context(), req.Data)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetMedia handles GET /api/v1/media
func (h *MediaHandlers) GetMedia(c *gin.Context) {
	files, err := h.media.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}

// DeleteMedia handles DELETE /api/v1/media/:id
func (h *MediaHandlers) DeleteMedia(c *gin.Context) {
	if err := h.media.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetOrphans handles GET /api/v1/media/orphans - uploads no document uses
func (h *MediaHandlers) GetOrphans(c *gin.Context) {
	orphans, err := h.media.Orphans(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orphans": orphans, "count": len(orphans)})
}
