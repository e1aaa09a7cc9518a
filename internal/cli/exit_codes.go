package cli

import (
	"context"
	"errors"

	clierrors "github.com/ariel-frischer/repoman/internal/errors"
)

// Exit codes for the repoman CLI
// These codes support scripting and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a pipeline stage or other runtime failure
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments, including a
	// repository name that is invalid or already taken
	ExitInvalidArguments = 3

	// ExitConfigError indicates the configuration could not be resolved
	ExitConfigError = 4

	// ExitTimeout indicates command execution timed out
	ExitTimeout = 5
)

// exitCode picks the process exit code for err.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeout
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument:
			return ExitInvalidArguments
		case clierrors.Configuration:
			return ExitConfigError
		}
	}
	return ExitFailure
}
