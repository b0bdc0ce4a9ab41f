package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ralt/rpmaudit/internal/inspect"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available inspections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, in := range inspect.All() {
				state := "on"
				if !settings.Enabled(in.Name) {
					state = "off"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", in.Name, state, in.Description)
			}
			return w.Flush()
		},
	}
}
