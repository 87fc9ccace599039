// Package cleanup provides background worker
package cleanup

import (
	"context"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
)

// Evictor closes sessions idle for longer than ttl, saving them first, and
// reports how many it closed.
type Evictor interface {
	EvictIdle(ctx context.Context, ttl time.Duration) int
}

// Worker handles background session cleanup
type Worker struct {
	evictor Evictor
	config  *Config
	logger  *logging.ChanneledLogger
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(evictor Evictor, config *Config, logger *logging.ChanneledLogger) *Worker {
	if config == nil {
		config = NewConfig()
	}
	return &Worker{evictor: evictor, config: config, logger: logger}
}

// Start begins the cleanup worker routine, using the configured interval
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Editor().Info("Session cleanup worker started", "interval", w.config.CleanupInterval, "idleTTL", w.config.SessionIdleTTL)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown().Info("Session cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *Worker) RunOnce(ctx context.Context) int {
	start := time.Now()
	closed := w.evictor.EvictIdle(ctx, w.config.SessionIdleTTL)
	if closed > 0 {
		w.logger.Editor().Info("Session cleanup finished", "closed", closed, "duration", time.Since(start))
	} else if w.config.VerboseReporting {
		w.logger.Editor().Debug("Session cleanup found no idle sessions", "duration", time.Since(start))
	}
	return closed
}
