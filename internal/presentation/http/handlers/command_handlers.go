package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
)

// CommandHandlers routes editor commands into the document reducer
type CommandHandlers struct {
	editor      *services.EditorService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCommandHandlers creates command handlers with injected dependencies
func NewCommandHandlers(editor *services.EditorService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CommandHandlers {
	return &CommandHandlers{editor: editor, logger: logger, perfTracker: perfTracker}
}

// BatchRequest applies several commands in order.
type BatchRequest struct {
	Commands []document.Command `json:"commands" binding:"required"`
}

// PostCommand handles POST /api/v1/documents/:id/commands
func (h *CommandHandlers) PostCommand(c *gin.Context) {
	var cmd document.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid command format", "details": err.Error()})
		return
	}
	state, err := h.editor.Apply(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// PostBatch handles POST /api/v1/documents/:id/commands/batch. It stops at
// the first rejected command; earlier commands stay applied.
func (h *CommandHandlers) PostBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	marker := h.perfTracker.StartOperation("command_batch_request", c.Param("id"))
	defer h.perfTracker.CompleteOperation(marker)
	marker.AddMetadata("commands", len(req.Commands))

	var state *services.EditorState
	for i, cmd := range req.Commands {
		var err error
		state, err = h.editor.Apply(c.Request.Context(), c.Param("id"), cmd)
		if err != nil {
			marker.SetError(err)
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "applied": i})
			return
		}
	}
	if state == nil {
		if state, _ = h.editor.State(c.Request.Context(), c.Param("id")); state == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": services.ErrSessionNotFound.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, state)
}

// GetPanel handles GET /api/v1/documents/:id/panel?nodeId= - the property
// panel for a node, or for the selection
func (h *CommandHandlers) GetPanel(c *gin.Context) {
	panel, err := h.editor.Panel(c.Request.Context(), c.Param("id"), c.Query("nodeId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if panel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "node not found"})
		return
	}
	c.JSON(http.StatusOK, panel)
}
