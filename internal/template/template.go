// Package template applies a named template to a new repository directory.
// A template is an entry of the configuration's templates directory: a
// directory whose contents are copied into the target, or an executable that
// is run with the target and template paths as arguments.
package template

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariel-frischer/repoman/internal/runner"
)

// Kind is what a template name resolved to.
type Kind string

const (
	KindDirectory Kind = "directory"
	KindScript    Kind = "script"
	// KindInvalid is only reported by List, for entries that can never be applied.
	KindInvalid Kind = "invalid"
)

// Template is a resolved template.
type Template struct {
	Name string
	Kind Kind
	Path string
}

// Result describes a completed Apply.
type Result struct {
	Applied bool
	Kind    Kind
	Path    string
}

// Applier resolves templates against Dir and applies them.
type Applier struct {
	Dir    string
	Runner runner.Runner
	// Stdout and Stderr receive script output as it is produced.
	Stdout io.Writer
	Stderr io.Writer
}

// NewApplier returns an Applier for the templates directory dir.
func NewApplier(dir string, r runner.Runner) *Applier {
	return &Applier{Dir: dir, Runner: r}
}

// Resolve finds the template called name. Anything other than a plain entry
// name inside Dir is reported as not found.
func (a *Applier) Resolve(name string) (Template, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return Template{}, &ApplyError{Kind: ErrKindNotFound, Template: name, Err: errors.New("invalid template name")}
	}

	path := filepath.Join(a.Dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return Template{}, &ApplyError{Kind: ErrKindNotFound, Template: name, Path: path, Err: err}
	}

	if info.IsDir() {
		return Template{Name: name, Kind: KindDirectory, Path: path}, nil
	}
	return Template{Name: name, Kind: KindScript, Path: path}, nil
}

// Apply materializes template name at target. target must not exist; its
// parent is created when missing. Nothing is cleaned up on failure.
func (a *Applier) Apply(ctx context.Context, name, target string) (Result, error) {
	tmpl, err := a.Resolve(name)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Result{}, &ApplyError{Kind: ErrKindCopyFailed, Template: name, Path: target, Err: err}
	}

	switch tmpl.Kind {
	case KindDirectory:
		err = a.copyDir(tmpl, target)
	default:
		err = a.runScript(ctx, tmpl, target)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Applied: true, Kind: tmpl.Kind, Path: tmpl.Path}, nil
}

func (a *Applier) copyDir(tmpl Template, target string) error {
	if _, err := os.Lstat(target); err == nil {
		return &ApplyError{Kind: ErrKindCopyFailed, Template: tmpl.Name, Path: target, Err: fs.ErrExist}
	}

	if err := os.CopyFS(target, os.DirFS(tmpl.Path)); err != nil {
		return &ApplyError{Kind: ErrKindCopyFailed, Template: tmpl.Name, Path: target, Err: err}
	}
	return nil
}

func (a *Applier) runScript(ctx context.Context, tmpl Template, target string) error {
	info, err := os.Stat(tmpl.Path)
	if err != nil {
		return &ApplyError{Kind: ErrKindSpawnFailed, Template: tmpl.Name, Path: tmpl.Path, Err: err}
	}
	if info.Mode()&0o111 == 0 {
		return &ApplyError{Kind: ErrKindSpawnFailed, Template: tmpl.Name, Path: tmpl.Path, Err: ErrNotExecutable}
	}

	res, err := a.Runner.Run(ctx, runner.Command{
		Name:   tmpl.Path,
		Args:   []string{target, tmpl.Path},
		Dir:    filepath.Dir(target),
		Stdout: a.Stdout,
		Stderr: a.Stderr,
	})
	if err != nil {
		return &ApplyError{Kind: ErrKindSpawnFailed, Template: tmpl.Name, Path: tmpl.Path, ExitCode: res.ExitCode, Err: err}
	}
	if !res.Success() {
		return &ApplyError{
			Kind:     ErrKindScriptFailed,
			Template: tmpl.Name,
			Path:     tmpl.Path,
			ExitCode: res.ExitCode,
			Stderr:   runner.TrimOutput(res.Stderr),
		}
	}
	return nil
}

// Entry is one item of the templates directory.
type Entry struct {
	Name string
	Kind Kind
}

// List returns every entry of the templates directory sorted by name. A
// missing directory yields no entries.
func (a *Applier) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(a.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading templates directory %s: %w", a.Dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entries = append(entries, Entry{Name: de.Name(), Kind: classify(filepath.Join(a.Dir, de.Name()))})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func classify(path string) Kind {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return KindInvalid
	case info.IsDir():
		return KindDirectory
	case info.Mode().IsRegular() && info.Mode()&0o111 != 0:
		return KindScript
	default:
		return KindInvalid
	}
}
