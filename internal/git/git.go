// Package git drives the local version-control steps of repository creation.
// go-git answers questions about a repository (is there one, which branch is
// HEAD on); the git CLI performs the mutations so that hooks, user
// configuration and the installed git's defaults all apply.
package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/ariel-frischer/repoman/internal/runner"
)

// InitialCommitMessage is used for the first commit of a new repository.
const InitialCommitMessage = "Initial commit"

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Driver runs git against a working directory.
type Driver struct {
	Runner runner.Runner
	// Binary is the git executable; defaults to "git".
	Binary string
}

// NewDriver returns a Driver that runs git through r.
func NewDriver(r runner.Runner) *Driver {
	return &Driver{Runner: r, Binary: "git"}
}

// IsRepository reports whether dir itself holds a repository. Parent
// directories are not searched.
func IsRepository(dir string) (bool, error) {
	_, err := git.PlainOpen(dir)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, git.ErrRepositoryNotExists):
		return false, nil
	default:
		return false, &Error{Op: OpOpen, Dir: dir, Err: err}
	}
}

// InitIfAbsent creates a repository in dir unless one already exists there.
// It reports whether git init was run.
func (d *Driver) InitIfAbsent(ctx context.Context, dir string) (bool, error) {
	exists, err := IsRepository(dir)
	if err != nil {
		return false, err
	}
	if exists {
		logDebug("[git] %s is already a repository, skipping init", dir)
		return false, nil
	}

	if err := d.run(ctx, OpInit, "", "init", dir); err != nil {
		return false, err
	}
	return true, nil
}

// StageAll stages every change in the working tree of dir.
func (d *Driver) StageAll(ctx context.Context, dir string) error {
	return d.run(ctx, OpStage, dir, "add", "-A")
}

// Commit records the staged changes in dir with message. With allowEmpty a
// commit is created even when nothing is staged.
func (d *Driver) Commit(ctx context.Context, dir, message string, allowEmpty bool) error {
	args := []string{"commit"}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}
	args = append(args, "-m", message)
	return d.run(ctx, OpCommit, dir, args...)
}

// AddRemote registers url as remote name in dir.
func (d *Driver) AddRemote(ctx context.Context, dir, name, url string) error {
	return d.run(ctx, OpRemoteAdd, dir, "remote", "add", name, url)
}

// Push pushes branch to remote and sets it as upstream.
func (d *Driver) Push(ctx context.Context, dir, remote, branch string) error {
	return d.run(ctx, OpPush, dir, "push", "-u", remote, branch)
}

// CurrentBranch returns the branch HEAD points at in dir. It reads the
// symbolic HEAD reference, so it works before the first commit too.
func (d *Driver) CurrentBranch(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", &Error{Op: OpOpen, Dir: dir, Err: err}
	}

	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", &Error{Op: OpHead, Dir: dir, Err: fmt.Errorf("reading HEAD: %w", err)}
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", &Error{Op: OpHead, Dir: dir, Err: ErrDetachedHead}
	}

	branch := head.Target().Short()
	logDebug("[git] CurrentBranch(%s): %s", dir, branch)
	return branch, nil
}

func (d *Driver) run(ctx context.Context, op, dir string, args ...string) error {
	cmd := runner.Command{Name: d.binary(), Args: args, Dir: dir}
	logDebug("[git] running %s (dir=%q)", cmd, dir)

	res, err := d.Runner.Run(ctx, cmd)
	if err != nil {
		return &Error{Op: op, Dir: dir, ExitCode: res.ExitCode, Err: err}
	}
	if !res.Success() {
		logDebug("[git] %s exited with code %d", cmd, res.ExitCode)
		return &Error{Op: op, Dir: dir, ExitCode: res.ExitCode, Stderr: runner.TrimOutput(res.Stderr)}
	}
	return nil
}

func (d *Driver) binary() string {
	if d.Binary == "" {
		return "git"
	}
	return d.Binary
}
