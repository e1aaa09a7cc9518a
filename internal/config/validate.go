package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks the invariants of fully resolved settings.
func Validate(s Settings) error {
	var errs []error

	switch {
	case strings.TrimSpace(s.RepoPath) == "":
		errs = append(errs, errors.New("repo_path must not be empty"))
	case strings.Contains(s.RepoPath, HomeToken):
		errs = append(errs, fmt.Errorf("repo_path %q still contains %q", s.RepoPath, HomeToken))
	case !filepath.IsAbs(s.RepoPath):
		errs = append(errs, fmt.Errorf("repo_path %q must be an absolute path", s.RepoPath))
	}

	if s.UseSSHRemote {
		if strings.TrimSpace(s.SSHRemoteHost) == "" {
			errs = append(errs, errors.New("ssh_remote_host must be set when use_ssh_remote is true"))
		}
		if strings.TrimSpace(s.SSHRemoteRepoPath) == "" {
			errs = append(errs, errors.New("ssh_remote_repo_path must be set when use_ssh_remote is true"))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &Error{Op: OpValidate, Path: s.File(), Err: errors.Join(errs...)}
}
