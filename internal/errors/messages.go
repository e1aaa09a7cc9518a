package errors

import "fmt"

// Common error messages for the repoman CLI.
// These templates ensure consistent, actionable error messages.

// MissingRepositoryName creates an error for a missing init argument.
func MissingRepositoryName() *CLIError {
	return NewArgumentErrorWithUsage(
		"repository name is required",
		"repoman init <name> [--template <template>]",
		"Provide the name of the repository to create",
		"Example: repoman init my-project --template basic",
	)
}

// TargetExists creates an error for a repository directory that is already present.
func TargetExists(stage, path string, err error) *CLIError {
	return NewStageError(Argument, stage, err,
		fmt.Sprintf("Choose another name, or remove %s if it is left over from a failed run", path),
	)
}

// TemplateFailed creates an error for a failed template application. The
// half-populated directory is not cleaned up, so the next run would refuse it.
func TemplateFailed(stage, templatesDir, target string, err error) *CLIError {
	return NewStageError(Template, stage, err,
		"List available templates with: repoman templates",
		fmt.Sprintf("Templates live in %s", templatesDir),
		fmt.Sprintf("Remove %s before retrying", target),
	)
}

// VersionControlFailed creates an error for a failed local git step.
func VersionControlFailed(stage, target string, err error) *CLIError {
	return NewStageError(VersionControl, stage, err,
		"Check that git is installed: git --version",
		fmt.Sprintf("Remove %s before retrying", target),
	)
}

// RemoteFailed creates an error for a failed remote step. The local
// repository is complete at this point.
func RemoteFailed(stage, host, target string, err error) *CLIError {
	return NewStageError(Remote, stage, err,
		fmt.Sprintf("Check ssh access: ssh %s true", host),
		fmt.Sprintf("The local repository at %s is intact; add the remote by hand or delete it and retry", target),
	)
}

// ConfigFailed creates an error for configuration resolution problems.
func ConfigFailed(err error) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  err.Error(),
		Remediation: []string{
			"Show where repoman looks for its configuration: repoman config path",
			"Required keys in config.toml: repo_path, use_ssh_remote, ssh_remote_host, ssh_remote_repo_path, ssh_remote_use_bare, ssh_remote_add_git_suffix",
		},
		Err: err,
	}
}

// NotImplemented creates an error for a command that is declared but has no
// implementation yet.
func NotImplemented(command string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("%s command not yet implemented", command),
	)
}
