package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
)

// GenerateHandlers contains the AI layout generation handlers
type GenerateHandlers struct {
	layouts     *services.LayoutService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewGenerateHandlers creates generation handlers with injected dependencies
func NewGenerateHandlers(layouts *services.LayoutService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *GenerateHandlers {
	return &GenerateHandlers{layouts: layouts, logger: logger, perfTracker: perfTracker}
}

// GenerateRequest represents a layout generation request
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// PostGenerate handles POST /api/v1/documents/:id/generate - replaces the
// document content with a generated layout
func (h *GenerateHandlers) PostGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	start := time.Now()
	h.logger.Generative().Debug("Received generate request", "documentId", c.Param("id"), "promptLength", len(req.Prompt))
	res, err := h.layouts.Generate(c.Request.Context(), c.Param("id"), req.Prompt)
	if err != nil {
		h.logger.Generative().Warn("Layout generation failed", "documentId", c.Param("id"), "error", err.Error(), "duration", time.Since(start))
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PostGeneratePreview handles POST /api/v1/generate/preview - builds a
// layout without touching any document
func (h *GenerateHandlers) PostGeneratePreview(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	res, err := h.layouts.Preview(c.Request.Context(), req.Prompt)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
