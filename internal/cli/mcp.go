package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/container"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	mcpserver "github.com/AtRiskMedia/flexibuilder-go/internal/presentation/mcp"
	"github.com/AtRiskMedia/flexibuilder-go/pkg/config"
)

func newMCPCmd() *cobra.Command {
	var inMemory bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the editor over the Model Context Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol, so logs go to stderr.
			cfg := logging.DefaultLoggerConfig()
			cfg.OutputToFile = config.LogToFile
			cfg.LogDirectory = config.LogDir
			cfg.JSONFormat = config.LogJSON
			cfg.DefaultLevel = logging.ParseLevel(config.LogLevel)
			cfg.Console = os.Stderr
			logger, err := logging.NewChanneledLogger(cfg)
			if err != nil {
				return err
			}

			c, err := container.NewContainer(container.Options{InMemory: inMemory, Logger: logger})
			if err != nil {
				return err
			}
			defer c.Close()

			srv := mcpserver.New(mcpserver.Deps{
				Editor:  c.EditorService,
				Layouts: c.LayoutService,
				Exports: c.ExportService,
				Logger:  logger,
			}, Version)
			serveErr := srv.ServeStdio()

			if saved, err := c.EditorService.SaveDirty(context.Background()); err != nil {
				logger.Shutdown().Error("Some documents were not saved", "saved", saved, "error", err.Error())
			}
			return serveErr
		},
	}
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep documents in memory only")
	return cmd
}
