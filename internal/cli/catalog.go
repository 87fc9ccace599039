package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
)

func newCatalogCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List widget types and their properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := widgets.Default()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(catalog.Palette())
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tPARENT\tPROPS")
			for _, typ := range catalog.Types() {
				def, _ := catalog.Get(typ)
				keys := make([]string, 0, len(def.Fields))
				for _, f := range def.Fields {
					keys = append(keys, f.Key)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Type, def.Parent, strings.Join(keys, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the palette as JSON")
	return cmd
}
