package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/repoman/internal/config"
	clierrors "github.com/ariel-frischer/repoman/internal/errors"
	"github.com/ariel-frischer/repoman/internal/history"
	"github.com/ariel-frischer/repoman/internal/pipeline"
	"github.com/ariel-frischer/repoman/internal/progress"
)

func newInitCmd(a *app) *cobra.Command {
	var templateName string

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create a new repository",
		Long: `Create a new git repository named <name> under repo_path.

The steps are:
  1. Check that <name> does not exist yet
  2. Apply the template, when --template is given
  3. git init
  4. Stage the template files and create the initial commit
  5. When use_ssh_remote is set: create the repository on the remote
     host over ssh, add it as origin and push

A failure stops the run. Nothing already done is undone.`,
		Example: `  repoman init my-project
  repoman init my-project --template basic
  repoman init my-project -t scaffold.sh --timeout 2m`,
		GroupID: GroupRepositories,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return clierrors.MissingRepositoryName()
			}
			if len(args) > 1 {
				return clierrors.NewArgumentErrorWithUsage(
					fmt.Sprintf("expected one repository name, got %d arguments", len(args)),
					"repoman init <name> [--template <template>]",
				)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, pipeline.Request{Name: args[0], Template: templateName})
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "template to populate the repository with")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, req pipeline.Request) error {
	settings, err := a.settings(true)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	display := progress.NewDisplay(out, progress.DetectTerminalCapabilities(out), a.debug)
	opts := []pipeline.Option{
		pipeline.WithRunner(a.runner),
		pipeline.WithOutput(out, a.stderr),
		pipeline.WithObserver(display),
	}
	if a.debug {
		opts = append(opts, pipeline.WithDebugLogger(a.debugf))
	}
	p := pipeline.New(settings, opts...)

	started := time.Now()
	outcome, runErr := p.Run(ctx, req)
	history.NewWriter(settings.ConfigPath, history.DefaultMaxEntries, a.stderr).LogRun(req, outcome, started)

	if runErr != nil {
		return stageFailure(settings, outcome.Dir, runErr)
	}

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("Created"), outcome.Dir)
	if outcome.Remote != "" {
		fmt.Fprintf(out, "Remote: %s\n", outcome.Remote)
	}
	return nil
}

// stageFailure converts a pipeline failure into a CLI error for its stage.
func stageFailure(s config.Settings, target string, err error) *clierrors.CLIError {
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		return clierrors.Wrap(err, clierrors.Runtime)
	}

	stage := string(stageErr.Stage)
	switch stageErr.Stage {
	case pipeline.StageExistenceCheck:
		if errors.Is(err, pipeline.ErrTargetExists) || errors.Is(err, pipeline.ErrInvalidName) {
			return clierrors.TargetExists(stage, target, stageErr.Err)
		}
		return clierrors.NewStageError(clierrors.Runtime, stage, stageErr.Err)
	case pipeline.StageTemplateApply:
		return clierrors.TemplateFailed(stage, s.TemplatesDir(), target, stageErr.Err)
	case pipeline.StageVCSInit, pipeline.StageVCSCommit:
		return clierrors.VersionControlFailed(stage, target, stageErr.Err)
	case pipeline.StageRemoteCreate, pipeline.StageRemotePush:
		return clierrors.RemoteFailed(stage, s.SSHRemoteHost, target, stageErr.Err)
	default:
		return clierrors.NewStageError(clierrors.Runtime, stage, stageErr.Err)
	}
}
