package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/container"
)

// HealthHandlers reports service status
type HealthHandlers struct {
	container *container.Container
	started   time.Time
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(c *container.Container) *HealthHandlers {
	return &HealthHandlers{container: c, started: time.Now()}
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	storage := "memory"
	status := http.StatusOK
	if h.container.DB != nil {
		storage = h.container.DB.Driver
		if err := h.container.DB.PingTimeout(2 * time.Second); err != nil {
			status = http.StatusServiceUnavailable
			c.JSON(status, gin.H{"status": "degraded", "storage": storage, "error": err.Error()})
			return
		}
	}
	c.JSON(status, gin.H{
		"status":   "ok",
		"storage":  storage,
		"sessions": h.container.Sessions.Len(),
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"perf":     h.container.PerfTracker.GetOverallStats(),
	})
}

// GetDocumentMetrics handles GET /api/v1/documents/:id/metrics - recent
// operation timings and alerts for one document
func (h *HealthHandlers) GetDocumentMetrics(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"snapshot": h.container.PerfTracker.TakeSnapshot(id),
		"alerts":   h.container.PerfTracker.GetAlerts(id),
	})
}
