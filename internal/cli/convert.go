package cli

import (
	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/repoman/internal/errors"
)

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "convert",
		Short:   "Convert an existing directory into a managed repository (not yet implemented)",
		GroupID: GroupRepositories,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clierrors.NotImplemented("convert")
		},
	}
}
