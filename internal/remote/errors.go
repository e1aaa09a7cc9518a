package remote

import (
	"fmt"
	"strings"
)

// Operations reported in Error.Op.
const (
	OpCreate = "create"
	OpWire   = "add remote"
	OpPush   = "push"
)

// Error reports a failed remote step.
type Error struct {
	Op       string
	Ref      Ref
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "remote %s %s", e.Op, e.Ref.URL())
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
		return b.String()
	}
	fmt.Fprintf(&b, ": exit code %d", e.ExitCode)
	if e.Stderr != "" {
		fmt.Fprintf(&b, ": %s", e.Stderr)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
