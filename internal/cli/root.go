// Package cli wires the flexibuilder command tree.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// NewRootCmd builds the flexibuilder command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "flexibuilder",
		Short:        "Visual page builder server and tools",
		SilenceUsage: true,
		Version:      Version,
		Example: strings.TrimSpace(`
  # Run the editor API
  flexibuilder serve --port 8080

  # Expose the editor to an AI agent over stdio
  flexibuilder mcp

  # Turn a saved payload into markdown
  flexibuilder export page.json --format markdown
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newPreviewCmd())
	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newHashPasswordCmd())
	return cmd
}
