package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/repoman/internal/config"
	clierrors "github.com/ariel-frischer/repoman/internal/errors"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect repoman configuration",
		Long: `Inspect repoman configuration settings.

Settings are loaded with the following priority (highest to lowest):
  1. Environment variables (REPOMAN_*, e.g. REPOMAN_REPO_PATH)
  2. config.toml in the configuration directory`,
		Example: `  # Show the resolved settings
  repoman config show

  # Show them as JSON
  repoman config show --format json

  # Show where repoman looks for its configuration
  repoman config path`,
		GroupID: GroupConfiguration,
	}

	configCmd.AddCommand(newConfigShowCmd(a), newConfigPathCmd(a))
	return configCmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case config.FormatTOML, config.FormatYAML, config.FormatJSON:
			default:
				return clierrors.NewArgumentErrorWithUsage(
					fmt.Sprintf("unknown format %q", format),
					"repoman config show [--format toml|yaml|json]",
				)
			}

			settings, err := a.settings(true)
			if err != nil {
				return err
			}
			out, err := config.Marshal(settings, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", config.FormatTOML, "output format: toml, yaml or json")
	return cmd
}

func newConfigPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration search path",
		Long: `Print the configuration directories in search order. The first one that
exists is marked as active. Nothing is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			r := a.resolver(false)

			if a.configDir != "" {
				dir, err := r.Locate()
				if err != nil {
					return clierrors.ConfigFailed(err)
				}
				fmt.Fprintf(out, "%s (--config)\n", dir)
				return nil
			}

			candidates := r.Candidates()
			active, found := config.FirstExisting(candidates)
			for i, path := range candidates {
				marker := ""
				if found && path == active {
					marker = " (active)"
				}
				fmt.Fprintf(out, "%d: %s%s\n", i, path, marker)
			}
			if !found {
				fmt.Fprintln(out, "no config found; the next command that needs one will ask where to create it")
			}
			return nil
		},
	}
}
