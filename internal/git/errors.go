package git

import (
	"errors"
	"fmt"
	"strings"
)

// Operations reported in Error.Op.
const (
	OpOpen      = "open"
	OpInit      = "init"
	OpStage     = "add"
	OpCommit    = "commit"
	OpRemoteAdd = "remote add"
	OpPush      = "push"
	OpHead      = "head"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD is not on a branch.
var ErrDetachedHead = errors.New("HEAD is not on a branch")

// Error reports a failed git operation. A command that ran and failed has a
// non-zero ExitCode and its trimmed stderr; one that could not be started
// carries the cause in Err.
type Error struct {
	Op       string
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "git %s", e.Op)
	if e.Dir != "" {
		fmt.Fprintf(&b, " in %s", e.Dir)
	}
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
