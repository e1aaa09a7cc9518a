// Package pipeline creates a repository: it checks the target, applies an
// optional template, initializes and commits with git, and optionally
// provisions and pushes to an SSH remote. Stages run strictly in order and
// the first failure ends the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariel-frischer/repoman/internal/config"
	"github.com/ariel-frischer/repoman/internal/git"
	"github.com/ariel-frischer/repoman/internal/remote"
	"github.com/ariel-frischer/repoman/internal/runner"
	"github.com/ariel-frischer/repoman/internal/template"
)

// TemplateApplier materializes a template at a target directory.
type TemplateApplier interface {
	Apply(ctx context.Context, name, target string) (template.Result, error)
}

// VCS performs the local version-control steps.
type VCS interface {
	InitIfAbsent(ctx context.Context, dir string) (bool, error)
	StageAll(ctx context.Context, dir string) error
	Commit(ctx context.Context, dir, message string, allowEmpty bool) error
}

// RemoteProvisioner creates the remote repository and pushes to it.
type RemoteProvisioner interface {
	CreateRemote(ctx context.Context, name string) (remote.Ref, error)
	WireAndPush(ctx context.Context, dir string, ref remote.Ref) error
}

// Pipeline runs repository creation against fixed settings.
type Pipeline struct {
	settings  config.Settings
	runner    runner.Runner
	stdout    io.Writer
	stderr    io.Writer
	templates TemplateApplier
	vcs       VCS
	remote    RemoteProvisioner
	observer  Observer
	debug     func(format string, args ...any)
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunner sets the runner the default collaborators use.
func WithRunner(r runner.Runner) Option {
	return func(p *Pipeline) {
		p.runner = r
	}
}

// WithOutput sets where template scripts write their output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(p *Pipeline) {
		p.stdout = stdout
		p.stderr = stderr
	}
}

// WithTemplateApplier replaces the template stage implementation.
func WithTemplateApplier(a TemplateApplier) Option {
	return func(p *Pipeline) {
		p.templates = a
	}
}

// WithVCS replaces the version-control implementation.
func WithVCS(v VCS) Option {
	return func(p *Pipeline) {
		p.vcs = v
	}
}

// WithRemote replaces the remote provisioning implementation.
func WithRemote(r RemoteProvisioner) Option {
	return func(p *Pipeline) {
		p.remote = r
	}
}

// WithObserver sets the observer notified of stage transitions.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithDebugLogger sets a logger for diagnostic output.
func WithDebugLogger(logger func(format string, args ...any)) Option {
	return func(p *Pipeline) {
		p.debug = logger
	}
}

// New returns a Pipeline for settings. Collaborators not supplied through
// options are built on the real git, ssh and template implementations.
func New(settings config.Settings, opts ...Option) *Pipeline {
	p := &Pipeline{
		settings: settings,
		observer: NopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.runner == nil {
		p.runner = runner.NewExecRunner()
	}
	if p.templates == nil {
		applier := template.NewApplier(settings.TemplatesDir(), p.runner)
		applier.Stdout = p.stdout
		applier.Stderr = p.stderr
		p.templates = applier
	}
	driver := git.NewDriver(p.runner)
	if p.vcs == nil {
		p.vcs = driver
	}
	if p.remote == nil {
		p.remote = remote.New(settings, p.runner, driver)
	}
	return p
}

// Target returns the directory a repository called name is created in.
func (p *Pipeline) Target(name string) string {
	return filepath.Join(p.settings.RepoPath, name)
}

// Run creates the repository described by req. On failure the returned
// error is a *StageError and the Outcome carries the same stage; work done
// by earlier stages is left in place.
func (p *Pipeline) Run(ctx context.Context, req Request) (Outcome, error) {
	start := p.now()
	r := &run{Pipeline: p, ctx: ctx, req: req, outcome: Outcome{Dir: p.Target(req.Name)}}

	err := r.execute()
	r.outcome.Duration = p.now().Sub(start)
	if err != nil {
		r.outcome.Status = StatusFailed
		r.outcome.Stage, _ = FailedStage(err)
		r.outcome.Message = err.Error()
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			r.outcome.Message = stageErr.Err.Error()
		}
		return r.outcome, err
	}

	r.outcome.Status = StatusCreated
	return r.outcome, nil
}

type run struct {
	*Pipeline
	ctx     context.Context
	req     Request
	outcome Outcome
}

func (r *run) execute() error {
	target := r.outcome.Dir

	if err := r.stage(StageExistenceCheck, func() (string, error) {
		return target, checkTarget(r.settings.RepoPath, r.req.Name, target)
	}); err != nil {
		return err
	}

	applied := false
	if r.req.Template == "" {
		r.observer.StageSkipped(StageTemplateApply, "no template requested")
	} else if err := r.stage(StageTemplateApply, func() (string, error) {
		res, err := r.templates.Apply(r.ctx, r.req.Template, target)
		if err != nil {
			return "", err
		}
		applied = res.Applied
		return fmt.Sprintf("%s template %s", res.Kind, r.req.Template), nil
	}); err != nil {
		return err
	}

	if err := r.stage(StageVCSInit, func() (string, error) {
		initialized, err := r.vcs.InitIfAbsent(r.ctx, target)
		if err != nil {
			return "", err
		}
		if !initialized {
			return "repository already present", nil
		}
		return "initialized", nil
	}); err != nil {
		return err
	}

	if err := r.stage(StageVCSCommit, func() (string, error) {
		if applied {
			if err := r.vcs.StageAll(r.ctx, target); err != nil {
				return "", err
			}
		}
		if err := r.vcs.Commit(r.ctx, target, git.InitialCommitMessage, true); err != nil {
			msg := fmt.Sprintf("initial commit failed: %v", err)
			r.logDebug("[pipeline] %s", msg)
			r.observer.Warn(StageVCSCommit, msg)
			r.outcome.Warnings = append(r.outcome.Warnings, msg)
			return "commit skipped", nil
		}
		return git.InitialCommitMessage, nil
	}); err != nil {
		return err
	}

	if !r.settings.UseSSHRemote {
		r.observer.StageSkipped(StageRemoteCreate, "remote provisioning disabled")
		r.observer.StageSkipped(StageRemotePush, "remote provisioning disabled")
		return nil
	}

	var ref remote.Ref
	if err := r.stage(StageRemoteCreate, func() (string, error) {
		var err error
		ref, err = r.remote.CreateRemote(r.ctx, r.req.Name)
		if err != nil {
			return "", err
		}
		return ref.URL(), nil
	}); err != nil {
		return err
	}

	return r.stage(StageRemotePush, func() (string, error) {
		if err := r.remote.WireAndPush(r.ctx, target, ref); err != nil {
			return "", err
		}
		r.outcome.Remote = ref.URL()
		return ref.URL(), nil
	})
}

// stage runs fn as stage, reporting to the observer. Cancellation is checked
// first so no new stage starts after the context is done.
func (r *run) stage(stage Stage, fn func() (string, error)) error {
	r.observer.StageStarted(stage)
	r.logDebug("[pipeline] stage %s started", stage)

	detail, err := "", r.ctx.Err()
	if err == nil {
		detail, err = fn()
	}
	if err != nil {
		r.logDebug("[pipeline] stage %s failed: %v", stage, err)
		r.observer.StageFailed(stage, err)
		return &StageError{Stage: stage, Err: err}
	}

	r.observer.StageCompleted(stage, detail)
	return nil
}

func (p *Pipeline) logDebug(format string, args ...any) {
	if p.debug != nil {
		p.debug(format, args...)
	}
}

// checkTarget rejects names that are not a single path segment and targets
// that already exist in any form, including dangling symlinks.
func checkTarget(repoPath, name, target string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("%w %q: must be a single directory name", ErrInvalidName, name)
	}
	if strings.TrimSpace(repoPath) == "" {
		return errors.New("repo_path is empty")
	}

	_, err := os.Lstat(target)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrTargetExists, target)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("checking %s: %w", target, err)
	}
}
