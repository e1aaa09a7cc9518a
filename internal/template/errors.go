package template

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies an ApplyError.
type ErrorKind string

const (
	ErrKindNotFound     ErrorKind = "not found"
	ErrKindCopyFailed   ErrorKind = "copy failed"
	ErrKindScriptFailed ErrorKind = "script failed"
	ErrKindSpawnFailed  ErrorKind = "spawn failed"
)

// ErrNotExecutable is returned for a template file without an execute bit.
var ErrNotExecutable = errors.New("template file is not executable")

// ApplyError reports why a template could not be applied.
type ApplyError struct {
	Kind     ErrorKind
	Template string
	// Path is the template or target path involved.
	Path string
	// ExitCode and Stderr are set for ErrKindScriptFailed.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ApplyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "template %q: %s", e.Template, e.Kind)
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Kind == ErrKindScriptFailed {
		fmt.Fprintf(&b, ": exit code %d", e.ExitCode)
		if e.Stderr != "" {
			fmt.Fprintf(&b, ": %s", e.Stderr)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an ApplyError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var applyErr *ApplyError
	return errors.As(err, &applyErr) && applyErr.Kind == kind
}
