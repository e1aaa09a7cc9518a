package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ariel-frischer/repoman/internal/runner"
)

// CallRecord captures one command seen by a FakeRunner.
type CallRecord struct {
	Name      string
	Args      []string
	Dir       string
	Timestamp time.Time
	ExitCode  int
	Error     error
}

// CommandLine returns "name arg1 arg2 ..." for assertions.
func (r CallRecord) CommandLine() string {
	return strings.TrimSpace(r.Name + " " + strings.Join(r.Args, " "))
}

// Response is what a FakeRunner returns for a matching command.
type Response struct {
	Result runner.Result
	Err    error
	// Effect runs before the response is returned, e.g. to create the
	// directory a real "git init" would have created.
	Effect func(cmd runner.Command)
}

type rule struct {
	prefix   string
	response Response
}

// FakeRunner is a runner.Runner that records every call and answers from a
// prefix-matched table. Unmatched commands succeed with empty output.
type FakeRunner struct {
	mu    sync.Mutex
	rules []rule
	calls []CallRecord
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers a response for commands whose command line starts with prefix.
// Later registrations take precedence.
func (f *FakeRunner) On(prefix string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append([]rule{{prefix: prefix, response: resp}}, f.rules...)
	return f
}

// OnExit is shorthand for a response with only an exit code and stderr.
func (f *FakeRunner) OnExit(prefix string, exitCode int, stderr string) *FakeRunner {
	return f.On(prefix, Response{Result: runner.Result{ExitCode: exitCode, Stderr: stderr}})
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd runner.Command) (runner.Result, error) {
	line := runner.Command{Name: cmd.Name, Args: cmd.Args}.String()

	f.mu.Lock()
	resp := Response{}
	for _, r := range f.rules {
		if strings.HasPrefix(line, r.prefix) {
			resp = r.response
			break
		}
	}
	f.mu.Unlock()

	if resp.Effect != nil {
		resp.Effect(cmd)
	}
	if err := ctx.Err(); err != nil && resp.Err == nil {
		resp.Err = err
		resp.Result.ExitCode = -1
	}

	f.mu.Lock()
	f.calls = append(f.calls, CallRecord{
		Name:      cmd.Name,
		Args:      append([]string(nil), cmd.Args...),
		Dir:       cmd.Dir,
		Timestamp: time.Now(),
		ExitCode:  resp.Result.ExitCode,
		Error:     resp.Err,
	})
	f.mu.Unlock()

	return resp.Result, resp.Err
}

// Calls returns a copy of the recorded calls in order.
func (f *FakeRunner) Calls() []CallRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CallRecord(nil), f.calls...)
}

// CommandLines returns the recorded command lines in order.
func (f *FakeRunner) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.CommandLine()
	}
	return lines
}
