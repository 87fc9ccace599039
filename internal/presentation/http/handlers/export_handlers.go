package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
)

// ExportHandlers serves rendered markup, exports and publications
type ExportHandlers struct {
	editor      *services.EditorService
	exports     *services.ExportService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewExportHandlers creates export handlers with injected dependencies
func NewExportHandlers(editor *services.EditorService, exports *services.ExportService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ExportHandlers {
	return &ExportHandlers{editor: editor, exports: exports, logger: logger, perfTracker: perfTracker}
}

// GetRender handles GET /api/v1/documents/:id/render?mode=editor|publish
func (h *ExportHandlers) GetRender(c *gin.Context) {
	mode := rendering.ModeEditor
	if c.Query("mode") == string(rendering.ModePublish) {
		mode = rendering.ModePublish
	}
	html, err := h.editor.Render(c.Request.Context(), c.Param("id"), mode)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetExport handles GET /api/v1/documents/:id/export?format=html|page|markdown|json
func (h *ExportHandlers) GetExport(c *gin.Context) {
	out, err := h.exports.Export(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", services.FormatPage))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if c.Query("download") != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	}
	c.Data(http.StatusOK, out.ContentType, []byte(out.Body))
}

// PostPublish handles POST /api/v1/documents/:id/publish
func (h *ExportHandlers) PostPublish(c *gin.Context) {
	pub, err := h.exports.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": pub.ID, "documentId": pub.DocumentID, "created": pub.Created})
}

// GetPublication handles GET /publications/:id - the latest published page
func (h *ExportHandlers) GetPublication(c *gin.Context) {
	pub, err := h.exports.LatestPublication(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if pub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no publication"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(pub.HTML))
}
