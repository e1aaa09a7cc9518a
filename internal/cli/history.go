package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/repoman/internal/errors"
	"github.com/ariel-frischer/repoman/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		nameFilter string
		limit      int
		clearAll   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "View repository creation history",
		Long: `View a log of 'repoman init' runs with timestamp, repository name, template,
outcome, failed stage, and duration. The log lives in history.yml inside the
configuration directory and keeps the most recent 200 runs.`,
		GroupID: GroupConfiguration,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return clierrors.NewArgumentError(fmt.Sprintf("limit must be positive, got %d", limit))
			}

			settings, err := a.settings(true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if clearAll {
				if err := history.ClearHistory(settings.ConfigPath); err != nil {
					return fmt.Errorf("clearing history: %w", err)
				}
				fmt.Fprintln(out, "History cleared.")
				return nil
			}

			histFile, err := history.LoadHistory(settings.ConfigPath)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}

			entries := history.Filter(histFile.Entries, nameFilter, limit)
			if len(entries) == 0 {
				if nameFilter != "" {
					fmt.Fprintf(out, "No matching entries for repository '%s'.\n", nameFilter)
				} else {
					fmt.Fprintln(out, "No history available.")
				}
				return nil
			}

			displayEntries(cmd, entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&nameFilter, "name", "n", "", "Filter by repository name")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Limit to last N entries (most recent)")
	cmd.Flags().BoolVarP(&clearAll, "clear", "c", false, "Clear all history")
	return cmd
}

// displayEntries formats and displays history entries.
func displayEntries(cmd *cobra.Command, entries []history.HistoryEntry) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		timestamp := entry.Timestamp.Local().Format("2006-01-02 15:04:05")

		status := green(entry.Status)
		if entry.Failed() {
			status = red(fmt.Sprintf("%s at %s", entry.Status, entry.Stage))
		}

		tmpl := entry.Template
		if tmpl == "" {
			tmpl = "-"
		}

		fmt.Fprintf(out, "%s  %-20s  %-12s  %s  %s\n",
			cyan(timestamp),
			entry.Name,
			tmpl,
			status,
			entry.Duration,
		)
	}
}
