// Package testutil provides test helpers shared by repoman's package tests:
// a recording fake runner, YAML call logs, and an isolated git/ssh
// environment for tests that drive the real git binary.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// RequireGit skips the test when git is not installed.
func RequireGit(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows - requires sh and git")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
}

// SetupGitEnv isolates git from the user's configuration: HOME points at a
// fresh directory, system config is ignored, and a commit identity is set
// through the environment. Returns the temporary home directory.
func SetupGitEnv(t *testing.T) string {
	t.Helper()
	RequireGit(t)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "Tests")
	t.Setenv("GIT_AUTHOR_EMAIL", "tests@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Tests")
	t.Setenv("GIT_COMMITTER_EMAIL", "tests@example.com")
	t.Setenv("GIT_TERMINAL_PROMPT", "0")
	return home
}

// fakeSSH drops ssh options, drops the host, and runs the remote command
// with the local shell. Git invokes it the same way for push transport.
const fakeSSH = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    -o|-p|-i|-l|-F) shift 2 ;;
    -*) shift ;;
    *) break ;;
  esac
done
shift
exec sh -c "$*"
`

// InstallFakeSSH puts an "ssh" executable first on PATH that executes remote
// commands locally, so "host:/abs/path" remotes resolve to local paths.
func InstallFakeSSH(t *testing.T) {
	t.Helper()

	bin := t.TempDir()
	path := filepath.Join(bin, "ssh")
	if err := os.WriteFile(path, []byte(fakeSSH), 0o755); err != nil {
		t.Fatalf("writing fake ssh: %v", err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("GIT_SSH_VARIANT", "ssh")
}

// Git runs a git command in dir and returns trimmed stdout, failing the test
// on error.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}
