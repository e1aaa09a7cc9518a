package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/repoman/internal/config"
	"github.com/ariel-frischer/repoman/internal/runner"
	"github.com/ariel-frischer/repoman/internal/testutil"
)

type fixture struct {
	settings config.Settings
	remote   string
}

func newFixture(t *testing.T, useRemote bool) fixture {
	t.Helper()
	testutil.SetupGitEnv(t)
	if useRemote {
		testutil.InstallFakeSSH(t)
	}

	cfgDir := t.TempDir()
	web := filepath.Join(cfgDir, config.TemplatesDirName, "web")
	require.NoError(t, os.MkdirAll(filepath.Join(web, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(web, "README.md"), []byte("# web\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(web, ".gitignore"), []byte("dist/\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(web, "src", "index.js"), []byte("console.log(1)\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, config.TemplatesDirName, "gen"), []byte(`#!/bin/sh
mkdir -p "$1"
echo generated > "$1/GENERATED"
`), 0o755))

	remoteRoot := t.TempDir()
	return fixture{
		settings: config.Settings{
			ConfigPath:            cfgDir,
			RepoPath:              filepath.Join(t.TempDir(), "repos"),
			UseSSHRemote:          useRemote,
			SSHRemoteHost:         "fakehost",
			SSHRemoteRepoPath:     remoteRoot,
			SSHRemoteUseBare:      true,
			SSHRemoteAddGitSuffix: true,
		},
		remote: remoteRoot,
	}
}

func headCommit(t *testing.T, dir string) *object.Commit {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	return commit
}

func commitFiles(t *testing.T, c *object.Commit) []string {
	t.Helper()
	tree, err := c.Tree()
	require.NoError(t, err)
	var names []string
	require.NoError(t, tree.Files().ForEach(func(f *object.File) error {
		names = append(names, f.Name)
		return nil
	}))
	return names
}

func TestIntegration_NoTemplateNoRemote(t *testing.T) {
	fx := newFixture(t, false)
	p := New(fx.settings)

	outcome, err := p.Run(context.Background(), Request{Name: "proj"})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, outcome.Status)

	dir := filepath.Join(fx.settings.RepoPath, "proj")
	assert.Equal(t, dir, outcome.Dir)

	commit := headCommit(t, dir)
	assert.Equal(t, "Initial commit\n", commit.Message)
	assert.Empty(t, commit.ParentHashes)
	assert.Empty(t, commitFiles(t, commit))
	assert.Empty(t, testutil.Git(t, dir, "remote"))
}

func TestIntegration_DirectoryTemplate(t *testing.T) {
	fx := newFixture(t, false)
	p := New(fx.settings)

	_, err := p.Run(context.Background(), Request{Name: "proj", Template: "web"})
	require.NoError(t, err)

	dir := filepath.Join(fx.settings.RepoPath, "proj")
	assert.ElementsMatch(t, []string{"README.md", ".gitignore", "src/index.js"}, commitFiles(t, headCommit(t, dir)))
	assert.Empty(t, testutil.Git(t, dir, "status", "--porcelain"))
}

func TestIntegration_ScriptTemplate(t *testing.T) {
	fx := newFixture(t, false)
	var stdout bytes.Buffer
	p := New(fx.settings, WithOutput(&stdout, &stdout), WithRunner(runner.NewExecRunner()))

	_, err := p.Run(context.Background(), Request{Name: "proj", Template: "gen"})
	require.NoError(t, err)

	dir := filepath.Join(fx.settings.RepoPath, "proj")
	assert.Equal(t, []string{"GENERATED"}, commitFiles(t, headCommit(t, dir)))
}

func TestIntegration_Remote(t *testing.T) {
	fx := newFixture(t, true)
	p := New(fx.settings)

	outcome, err := p.Run(context.Background(), Request{Name: "proj", Template: "web"})
	require.NoError(t, err)

	remotePath := filepath.Join(fx.remote, "proj.git")
	assert.Equal(t, "fakehost:"+remotePath, outcome.Remote)
	assert.Equal(t, "true", testutil.Git(t, remotePath, "rev-parse", "--is-bare-repository"))

	dir := filepath.Join(fx.settings.RepoPath, "proj")
	branch := testutil.Git(t, dir, "symbolic-ref", "--short", "HEAD")
	assert.Equal(t, testutil.Git(t, dir, "rev-parse", "HEAD"), testutil.Git(t, remotePath, "rev-parse", branch))
	assert.Equal(t, "origin/"+branch, testutil.Git(t, dir, "rev-parse", "--abbrev-ref", "@{upstream}"))
}

func TestIntegration_RemoteFailureKeepsLocalRepository(t *testing.T) {
	fx := newFixture(t, true)
	// Occupy the remote path with a file so "git init --bare" fails there.
	require.NoError(t, os.WriteFile(filepath.Join(fx.remote, "proj.git"), nil, 0o644))
	p := New(fx.settings)

	outcome, err := p.Run(context.Background(), Request{Name: "proj"})
	require.Error(t, err)
	assert.Equal(t, StageRemoteCreate, outcome.Stage)

	dir := filepath.Join(fx.settings.RepoPath, "proj")
	assert.Equal(t, "Initial commit\n", headCommit(t, dir).Message)
	assert.Empty(t, testutil.Git(t, dir, "remote"))
}

func TestIntegration_ExistingTargetUntouched(t *testing.T) {
	fx := newFixture(t, false)
	dir := filepath.Join(fx.settings.RepoPath, "proj")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("mine"), 0o644))

	outcome, err := New(fx.settings).Run(context.Background(), Request{Name: "proj", Template: "web"})
	require.Error(t, err)
	assert.Equal(t, StageExistenceCheck, outcome.Stage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name())
}
