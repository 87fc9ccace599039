package cli

import (
	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/startup"
)

func newServeCmd() *cobra.Command {
	var opts startup.Options
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startup.Initialize(opts)
		},
	}
	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (default from PORT)")
	cmd.Flags().BoolVar(&opts.InMemory, "in-memory", false, "keep documents in memory only")
	return cmd
}
