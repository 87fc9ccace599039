package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/rendering"
	"github.com/AtRiskMedia/flexibuilder-go/internal/presentation/templates"
)

func newRenderCmd() *cobra.Command {
	var (
		mode     string
		selected string
		device   string
	)
	cmd := &cobra.Command{
		Use:   "render <payload.json|->",
		Short: "Render a payload's canvas markup, optionally with editor decoration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			m := rendering.Mode(mode)
			if m != rendering.ModeEditor && m != rendering.ModePublish {
				return fmt.Errorf("unknown mode %q (want editor or publish)", mode)
			}
			dev := payload.Device
			if device != "" {
				dev = document.Device(device)
				if !dev.Valid() {
					return fmt.Errorf("unknown device %q", device)
				}
			}
			ctx := rendering.NewRenderContext(payload.Sections, selected, dev, m)
			_, err = io.WriteString(cmd.OutOrStdout(), templates.Render(ctx))
			return err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(rendering.ModePublish), "editor or publish")
	cmd.Flags().StringVar(&selected, "selected", "", "node id to mark selected (editor mode)")
	cmd.Flags().StringVar(&device, "device", "", "desktop, tablet or mobile (default from payload)")
	return cmd
}
