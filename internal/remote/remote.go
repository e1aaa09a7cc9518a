// Package remote provisions a repository on an SSH-reachable host and
// connects a local repository to it.
package remote

import (
	"context"
	"path"
	"strings"

	"github.com/ariel-frischer/repoman/internal/config"
	"github.com/ariel-frischer/repoman/internal/runner"
)

// RemoteName is the name the new remote is registered under.
const RemoteName = "origin"

// VCS is the local repository surface WireAndPush needs.
type VCS interface {
	AddRemote(ctx context.Context, dir, name, url string) error
	Push(ctx context.Context, dir, remote, branch string) error
	CurrentBranch(dir string) (string, error)
}

// Ref locates a repository on a remote host.
type Ref struct {
	Host string
	Path string
}

// URL returns the scp-style address git uses for the remote.
func (r Ref) URL() string {
	return r.Host + ":" + r.Path
}

// Provisioner creates remote repositories over ssh.
type Provisioner struct {
	Host         string
	RepoPath     string
	UseBare      bool
	AddGitSuffix bool

	Runner runner.Runner
	VCS    VCS
	// SSH is the ssh executable; defaults to "ssh".
	SSH string
}

// New returns a Provisioner configured from the ssh_remote_* settings.
func New(s config.Settings, r runner.Runner, vcs VCS) *Provisioner {
	return &Provisioner{
		Host:         s.SSHRemoteHost,
		RepoPath:     s.SSHRemoteRepoPath,
		UseBare:      s.SSHRemoteUseBare,
		AddGitSuffix: s.SSHRemoteAddGitSuffix,
		Runner:       r,
		VCS:          vcs,
		SSH:          "ssh",
	}
}

// Ref returns where the repository called name lives on the remote host.
// Paths are joined with forward slashes whatever the local OS.
func (p *Provisioner) Ref(name string) Ref {
	remotePath := path.Join(p.RepoPath, name)
	if p.AddGitSuffix {
		remotePath += ".git"
	}
	return Ref{Host: p.Host, Path: remotePath}
}

// InitCommand returns the shell command run on the remote host.
func (p *Provisioner) InitCommand(ref Ref) string {
	args := []string{"git", "init"}
	if p.UseBare {
		args = append(args, "--bare")
	}
	args = append(args, quoteRemotePath(ref.Path))
	return strings.Join(args, " ")
}

// CreateRemote initializes the repository for name on the remote host.
func (p *Provisioner) CreateRemote(ctx context.Context, name string) (Ref, error) {
	ref := p.Ref(name)

	res, err := p.Runner.Run(ctx, runner.Command{
		Name: p.ssh(),
		Args: []string{p.Host, p.InitCommand(ref)},
	})
	if err != nil {
		return ref, &Error{Op: OpCreate, Ref: ref, ExitCode: res.ExitCode, Err: err}
	}
	if !res.Success() {
		return ref, &Error{Op: OpCreate, Ref: ref, ExitCode: res.ExitCode, Stderr: runner.TrimOutput(res.Stderr)}
	}
	return ref, nil
}

// WireAndPush registers ref as origin in dir and pushes the current branch
// with upstream tracking. Nothing is undone when a step fails.
func (p *Provisioner) WireAndPush(ctx context.Context, dir string, ref Ref) error {
	if err := p.VCS.AddRemote(ctx, dir, RemoteName, ref.URL()); err != nil {
		return &Error{Op: OpWire, Ref: ref, Err: err}
	}

	branch, err := p.VCS.CurrentBranch(dir)
	if err != nil {
		return &Error{Op: OpPush, Ref: ref, Err: err}
	}

	if err := p.VCS.Push(ctx, dir, RemoteName, branch); err != nil {
		return &Error{Op: OpPush, Ref: ref, Err: err}
	}
	return nil
}

func (p *Provisioner) ssh() string {
	if p.SSH == "" {
		return "ssh"
	}
	return p.SSH
}

// quoteRemotePath quotes p for the remote shell but leaves a leading "~/" or
// "~user/" bare, so the shell expands it to the same directory git resolves
// for the "host:~/..." push URL.
func quoteRemotePath(p string) string {
	if !strings.HasPrefix(p, "~") {
		return shellQuote(p)
	}
	prefix, rest, found := strings.Cut(p, "/")
	if !isTildePrefix(prefix) {
		return shellQuote(p)
	}
	switch {
	case !found:
		return prefix
	case rest == "":
		return prefix + "/"
	default:
		return prefix + "/" + shellQuote(rest)
	}
}

// isTildePrefix reports whether s is "~" or "~user" with a portable user name.
func isTildePrefix(s string) bool {
	for _, r := range s[1:] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
