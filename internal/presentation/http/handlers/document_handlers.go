package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
)

// DocumentHandlers contains document lifecycle handlers
type DocumentHandlers struct {
	editor      *services.EditorService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewDocumentHandlers creates document handlers with injected dependencies
func NewDocumentHandlers(editor *services.EditorService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DocumentHandlers {
	return &DocumentHandlers{editor: editor, logger: logger, perfTracker: perfTracker}
}

// TitleRequest carries a document title.
type TitleRequest struct {
	Title string `json:"title"`
}

// GetDocuments handles GET /api/v1/documents
func (h *DocumentHandlers) GetDocuments(c *gin.Context) {
	docs, err := h.editor.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

// PostDocument handles POST /api/v1/documents - creates an unsaved document
func (h *DocumentHandlers) PostDocument(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	state, err := h.editor.Create(c.Request.Context(), req.Title)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// GetDocument handles GET /api/v1/documents/:id - opens the document if needed
func (h *DocumentHandlers) GetDocument(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_document_request", c.Param("id"))
	defer h.perfTracker.CompleteOperation(marker)

	state, err := h.editor.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		marker.SetError(err)
		abortWithError(c, err)
		return
	}
	h.logger.Editor().Debug("Document state served", "documentId", state.DocumentID, "duration", time.Since(start))
	c.JSON(http.StatusOK, state)
}

// PatchDocument handles PATCH /api/v1/documents/:id - renames the document
func (h *DocumentHandlers) PatchDocument(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	state, err := h.editor.Rename(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// DeleteDocument handles DELETE /api/v1/documents/:id
func (h *DocumentHandlers) DeleteDocument(c *gin.Context) {
	if err := h.editor.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PostSave handles POST /api/v1/documents/:id/save
func (h *DocumentHandlers) PostSave(c *gin.Context) {
	if err := h.editor.Save(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "savedAt": time.Now().UTC()})
}

// PostClose handles POST /api/v1/documents/:id/close - saves and releases the session
func (h *DocumentHandlers) PostClose(c *gin.Context) {
	if err := h.editor.Close(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSessions handles GET /api/v1/sessions
func (h *DocumentHandlers) GetSessions(c *gin.Context) {
	sessions := h.editor.Sessions()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}
