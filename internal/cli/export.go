package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
	domainservices "github.com/AtRiskMedia/flexibuilder-go/internal/domain/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/flexibuilder-go/pkg/config"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export <payload.json|->",
		Short: "Render a saved document payload as html, page, markdown or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := services.ExportPayload(payload, format)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), out.Body)
				return err
			}
			if err := os.WriteFile(output, []byte(out.Body), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", output, len(out.Body))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", services.FormatHTML, "html, page, markdown or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// readPayload loads a payload from a file or stdin and repairs nodes the
// catalog does not accept.
func readPayload(cmd *cobra.Command, path string) (*document.Payload, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	p, err := document.DecodePayload(data)
	if err != nil {
		return nil, err
	}

	integrity := domainservices.NewDocumentIntegrityService(widgets.Default())
	if report := integrity.Analyze(p.Sections, config.MediaURLPrefix); report.RepairRequired {
		p.Sections = integrity.Repair(p.Sections, security.GenerateNodeID)
		fmt.Fprintf(cmd.ErrOrStderr(), "repaired payload: %d unknown, %d misplaced, %d duplicate ids\n",
			len(report.UnknownTypes), len(report.Misplaced), len(report.DuplicateIDs))
	}
	return p, nil
}
