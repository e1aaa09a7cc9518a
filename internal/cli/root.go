// Package cli implements the repoman command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/repoman/internal/config"
	clierrors "github.com/ariel-frischer/repoman/internal/errors"
	"github.com/ariel-frischer/repoman/internal/git"
	"github.com/ariel-frischer/repoman/internal/runner"
	"github.com/ariel-frischer/repoman/internal/version"
)

// Command group IDs for help output
const (
	GroupRepositories  = "repositories"
	GroupConfiguration = "configuration"
)

// app carries the process streams and global flags into the commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configDir string
	debug     bool
	noColor   bool
	timeout   time.Duration

	runner    runner.Runner
	lookupEnv config.LookupEnvFunc
}

// Run executes repoman with args (including the program name) and returns
// the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		runner:    runner.NewExecRunner(),
		lookupEnv: os.LookupEnv,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(a)
	if len(args) > 0 {
		args = args[1:]
	}
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	git.SetDebugLogger(nil)
	if err != nil {
		clierrors.FprintAny(stderr, err)
	}
	return exitCode(err)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "repoman",
		Short: "Create git repositories from templates",
		Long: `repoman creates a new git repository under your configured repository root,
optionally populated from a template, with an initial commit, and optionally
provisioned and pushed to a remote host over ssh.

Configuration is read from the first existing directory of:
  1. $HOME/.config/repoman/
  2. $HOME/.repoman/
  3. /etc/repoman/
When none exists you are asked where to create one from the default bundle.`,
		Example: `  # Create an empty repository
  repoman init my-project

  # Create a repository from the "basic" template
  repoman init my-project --template basic

  # Check the environment
  repoman doctor`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.noColor {
				color.NoColor = true
			}
			if a.debug {
				git.SetDebugLogger(a.debugf)
			}
			return nil
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentError(err.Error(), fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()))
	})

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRepositories, Title: "Repositories:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configDir, "config", "", "configuration directory (skips the search)")
	flags.BoolVar(&a.debug, "debug", false, "print debug output to stderr")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	flags.DurationVar(&a.timeout, "timeout", 0, "abort after this long (0 = no limit)")

	rootCmd.AddCommand(
		newInitCmd(a),
		newTemplatesCmd(a),
		newConvertCmd(a),
		newConfigCmd(a),
		newDoctorCmd(a),
		newHistoryCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

func (a *app) debugf(format string, args ...any) {
	fmt.Fprintf(a.stderr, "[debug] "+format+"\n", args...)
}

// withTimeout applies --timeout to ctx.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// resolver returns a config resolver honoring --config. Non-interactive
// resolvers never prompt: with no configuration found they fail.
func (a *app) resolver(interactive bool) *config.Resolver {
	r := &config.Resolver{
		ExplicitDir: a.configDir,
		SystemDir:   config.SystemDir,
		LookupEnv:   a.lookupEnv,
		Stderr:      a.stderr,
	}
	if interactive {
		r.Stdin = a.stdin
	} else {
		r.Stderr = io.Discard
	}
	return r
}

// settings resolves the configuration, wrapping failures as configuration errors.
func (a *app) settings(interactive bool) (config.Settings, error) {
	s, err := a.resolver(interactive).Resolve()
	if err != nil {
		return config.Settings{}, clierrors.ConfigFailed(err)
	}
	if a.debug {
		a.debugf("[config] using %s (repo_path=%s, use_ssh_remote=%v)", s.ConfigPath, s.RepoPath, s.UseSSHRemote)
	}
	return s, nil
}
