// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/container"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/scheduling"
	"github.com/AtRiskMedia/flexibuilder-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/flexibuilder-go/pkg/config"
)

// Options controls how the server starts.
type Options struct {
	Port     string
	InMemory bool
}

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal arrives.
func Initialize(opts Options) error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
  ┌─┐┬  ┌─┐─┐ ┬┬┌┐ ┬ ┬┬┬  ┌┬┐┌─┐┬─┐
  ├┤ │  ├┤ ┌┴┬┘│├┴┐│ │││   ││├┤ ├┬┘
  └  ┴─┘└─┘┴ └─┴└─┘└─┘┴┴─┘─┴┘└─┘┴└─
` + "\033[0m")

	// Step 1: Create dependency injection container
	log.Println("Initializing dependency injection container...")
	appContainer, err := container.NewContainer(container.Options{InMemory: opts.InMemory})
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	logger := appContainer.Logger
	logger.Startup().Info("Container initialization complete - switching to channeled logging",
		"driver", config.DBDriver,
		"inMemory", opts.InMemory,
		"widgets", len(appContainer.Catalog.Types()))

	// Step 2: Start the preview hub
	logger.Startup().Info("Starting preview broadcaster...")
	go appContainer.Broadcaster.Run(ctx)

	// Step 3: Warm the default document
	if config.DefaultDocumentID != "" {
		if _, err := appContainer.EditorService.Open(ctx, config.DefaultDocumentID); err != nil {
			logger.Startup().Warn("Default document not opened", "documentId", config.DefaultDocumentID, "error", err.Error())
		}
	}

	// Step 4: Start autosave
	var autosave *scheduling.AutosaveScheduler
	if appContainer.DB != nil && config.AutosaveSchedule != "" {
		logger.Startup().Info("Starting autosave scheduler...", "schedule", config.AutosaveSchedule)
		autosave, err = scheduling.NewAutosaveScheduler(config.AutosaveSchedule, appContainer.EditorService, logger)
		if err != nil {
			return fmt.Errorf("invalid autosave schedule: %w", err)
		}
		autosave.Start()
	}

	// Step 5: Start background cleanup worker
	logger.Startup().Info("Starting background cleanup worker...")
	startWorkerTime := time.Now()
	cleanupWorker := cleanup.NewWorker(appContainer.EditorService, cleanup.NewConfig(), logger)
	go cleanupWorker.Start(ctx)
	logger.Startup().Info("Background cleanup worker started", "duration", time.Since(startWorkerTime))

	// Step 6: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	startServerTime := time.Now()

	port := opts.Port
	if port == "" {
		port = config.Port
	}
	httpServer := server.New(port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", port, "duration", time.Since(startServerTime))

	// Step 7: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	if autosave != nil {
		if err := autosave.Stop(shutdownCtx); err != nil {
			logger.Shutdown().Error("Autosave did not stop cleanly", "error", err.Error())
		}
	}

	logger.Shutdown().Info("Saving open documents...")
	if saved, err := appContainer.EditorService.SaveDirty(shutdownCtx); err != nil {
		logger.Shutdown().Error("Some documents were not saved", "saved", saved, "error", err.Error())
	} else {
		logger.Shutdown().Info("Open documents saved", "saved", saved)
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return appContainer.Close()
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
