package cli

import (
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
)

func newPreviewCmd() *cobra.Command {
	var (
		style string
		width int
	)
	cmd := &cobra.Command{
		Use:   "preview <payload.json|->",
		Short: "Show a document payload in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			md, err := services.ExportPayload(payload, services.FormatMarkdown)
			if err != nil {
				return err
			}
			if width < 20 {
				width = 20
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return err
			}
			out, err := r.Render(md.Body)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "dark", "glamour style: dark, light, notty, ascii")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width")
	return cmd
}
