package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// Stage names a step of the pipeline. Failures are reported against the
// stage in which they happened.
type Stage string

const (
	StageExistenceCheck Stage = "existence-check"
	StageTemplateApply  Stage = "template-apply"
	StageVCSInit        Stage = "vcs-init"
	StageVCSCommit      Stage = "vcs-commit"
	StageRemoteCreate   Stage = "remote-create"
	StageRemotePush     Stage = "remote-push"
)

// Stages lists every stage in execution order.
var Stages = []Stage{
	StageExistenceCheck,
	StageTemplateApply,
	StageVCSInit,
	StageVCSCommit,
	StageRemoteCreate,
	StageRemotePush,
}

// Status is the final state of a run.
type Status string

const (
	StatusCreated Status = "created"
	StatusFailed  Status = "failed"
)

// Request asks for a new repository. An empty Template means none.
type Request struct {
	Name     string
	Template string
}

// Outcome summarizes a run.
type Outcome struct {
	Status Status
	// Stage and Message are set when Status is StatusFailed.
	Stage   Stage
	Message string
	// Dir is the repository directory (set even on failure once known).
	Dir string
	// Remote is the remote URL when one was provisioned.
	Remote string
	// Warnings collects non-fatal problems, such as a failed commit.
	Warnings []string
	Duration time.Duration
}

// ErrTargetExists is returned when the repository directory is already present.
var ErrTargetExists = errors.New("target already exists")

// ErrInvalidName is returned for names that are not a single path segment.
var ErrInvalidName = errors.New("invalid repository name")

// StageError wraps the error that failed a stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}
