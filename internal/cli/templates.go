package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/repoman/internal/template"
)

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available templates",
		Long: `List the entries of the templates directory inside the configuration directory.

A directory is copied into the new repository. An executable file is run
as "<template> <target dir> <template path>". Anything else is invalid.`,
		GroupID: GroupRepositories,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.settings(true)
			if err != nil {
				return err
			}

			entries, err := template.NewApplier(settings.TemplatesDir(), a.runner).List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No templates in %s\n", settings.TemplatesDir())
				return nil
			}

			name, invalid := color.New(color.FgCyan), color.New(color.FgRed)
			for _, e := range entries {
				fmt.Fprintln(out, templateRow(e, name, invalid))
			}
			return nil
		},
	}
}

// templateRow pads the name before coloring it so escape sequences do not
// count toward the column width.
func templateRow(e template.Entry, name, invalid *color.Color) string {
	kind := string(e.Kind)
	if e.Kind == template.KindInvalid {
		kind = invalid.Sprint(kind)
	}
	return name.Sprint(fmt.Sprintf("%-24s", e.Name)) + " " + kind
}
