package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/repoman/internal/config"
	"github.com/ariel-frischer/repoman/internal/health"
)

// errChecksFailed is returned by doctor when a check did not pass.
var errChecksFailed = errors.New("one or more health checks failed")

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that repoman can run",
		Long: `Check that git is installed, the configuration resolves, the templates
directory and repository root are usable, and ssh is available when remote
provisioning is enabled. doctor never creates a configuration.`,
		GroupID: GroupConfiguration,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var settings *config.Settings
			s, cfgErr := a.resolver(false).Resolve()
			if cfgErr == nil {
				settings = &s
			}

			checker := health.NewChecker(a.runner)
			report := checker.Run(cmd.Context(), settings, cfgErr)
			fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))

			if !report.Passed {
				return errChecksFailed
			}
			return nil
		},
	}
}
