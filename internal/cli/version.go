package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/repoman/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "repoman %s\n", version.String())
			return nil
		},
	}
}
