package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
)

// PreviewHandlers upgrades preview subscribers to websockets
type PreviewHandlers struct {
	editor      *services.EditorService
	broadcaster *messaging.PreviewBroadcaster
	upgrader    websocket.Upgrader
	logger      *logging.ChanneledLogger
}

// NewPreviewHandlers creates preview handlers. An empty origin list accepts
// any origin.
func NewPreviewHandlers(editor *services.EditorService, broadcaster *messaging.PreviewBroadcaster, origins []string, logger *logging.ChanneledLogger) *PreviewHandlers {
	return &PreviewHandlers{
		editor:      editor,
		broadcaster: broadcaster,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || slices.Contains(origins, origin)
			},
		},
	}
}

// GetPreview handles GET /api/v1/documents/:id/preview - a live feed of
// canvas renders for one document
func (h *PreviewHandlers) GetPreview(c *gin.Context) {
	documentID := c.Param("id")
	initial, err := h.editor.PreviewSnapshot(c.Request.Context(), documentID)
	if err != nil {
		if _, openErr := h.editor.Open(c.Request.Context(), documentID); openErr != nil {
			abortWithError(c, openErr)
			return
		}
		if initial, err = h.editor.PreviewSnapshot(c.Request.Context(), documentID); err != nil {
			abortWithError(c, err)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Preview().Warn("Websocket upgrade failed", "documentId", documentID, "error", err.Error())
		return
	}
	h.logger.Preview().Info("Preview client connected", "documentId", documentID, "remote", c.ClientIP())
	h.broadcaster.Serve(conn, documentID, initial)
}
