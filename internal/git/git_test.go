package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/repoman/internal/runner"
	"github.com/ariel-frischer/repoman/internal/testutil"
)

func TestInitIfAbsent(t *testing.T) {
	testutil.SetupGitEnv(t)

	tests := map[string]struct {
		setup    func(t *testing.T, dir string)
		wantInit bool
	}{
		"plain directory": {
			setup:    func(t *testing.T, dir string) { require.NoError(t, os.MkdirAll(dir, 0o755)) },
			wantInit: true,
		},
		"missing directory": {
			setup:    func(t *testing.T, dir string) {},
			wantInit: true,
		},
		"existing repository": {
			setup: func(t *testing.T, dir string) {
				_, err := git.PlainInit(dir, false)
				require.NoError(t, err)
			},
			wantInit: false,
		},
		"inside another repository": {
			setup: func(t *testing.T, dir string) {
				_, err := git.PlainInit(filepath.Dir(dir), false)
				require.NoError(t, err)
				require.NoError(t, os.MkdirAll(dir, 0o755))
			},
			wantInit: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "proj")
			tt.setup(t, dir)

			d := NewDriver(runner.NewExecRunner())
			initialized, err := d.InitIfAbsent(context.Background(), dir)
			require.NoError(t, err)
			assert.Equal(t, tt.wantInit, initialized)
			assert.DirExists(t, filepath.Join(dir, ".git"))
		})
	}
}

func TestInitIfAbsent_Idempotent(t *testing.T) {
	dir := t.TempDir()
	fake := testutil.NewFakeRunner()
	testutil.DumpCallLogOnFailure(t, fake)
	fake.On("git init", testutil.Response{Effect: func(cmd runner.Command) {
		_, err := git.PlainInit(cmd.Args[1], false)
		require.NoError(t, err)
	}})
	d := NewDriver(fake)

	first, err := d.InitIfAbsent(context.Background(), dir)
	require.NoError(t, err)
	second, err := d.InitIfAbsent(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, []string{"git init " + dir}, fake.CommandLines())
}

func TestStageAllAndCommit(t *testing.T) {
	testutil.SetupGitEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# proj\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n"), 0o644))

	d := NewDriver(runner.NewExecRunner())
	ctx := context.Background()
	_, err := d.InitIfAbsent(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, d.StageAll(ctx, dir))
	require.NoError(t, d.Commit(ctx, dir, InitialCommitMessage, true))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, InitialCommitMessage+"\n", commit.Message)

	tree, err := commit.Tree()
	require.NoError(t, err)
	_, err = tree.File("README.md")
	assert.NoError(t, err)
	_, err = tree.File(".gitignore")
	assert.NoError(t, err)
}

func TestCommit_Empty(t *testing.T) {
	testutil.SetupGitEnv(t)
	ctx := context.Background()

	tests := map[string]struct {
		allowEmpty bool
		wantErr    bool
	}{
		"allowed":     {allowEmpty: true},
		"not allowed": {allowEmpty: false, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			d := NewDriver(runner.NewExecRunner())
			_, err := d.InitIfAbsent(ctx, dir)
			require.NoError(t, err)

			err = d.Commit(ctx, dir, InitialCommitMessage, tt.allowEmpty)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, InitialCommitMessage, testutil.Git(t, dir, "log", "-1", "--format=%s"))
				return
			}

			var gitErr *Error
			require.ErrorAs(t, err, &gitErr)
			assert.Equal(t, OpCommit, gitErr.Op)
			assert.NotZero(t, gitErr.ExitCode)
		})
	}
}

func TestCurrentBranch(t *testing.T) {
	testutil.SetupGitEnv(t)
	dir := t.TempDir()
	d := NewDriver(runner.NewExecRunner())
	_, err := d.InitIfAbsent(context.Background(), dir)
	require.NoError(t, err)

	want := testutil.Git(t, dir, "symbolic-ref", "--short", "HEAD")

	unborn, err := d.CurrentBranch(dir)
	require.NoError(t, err)
	assert.Equal(t, want, unborn)

	testutil.Git(t, dir, "checkout", "-q", "-b", "trunk")
	branch, err := d.CurrentBranch(dir)
	require.NoError(t, err)
	assert.Equal(t, "trunk", branch)

	_, err = d.CurrentBranch(t.TempDir())
	assert.Error(t, err)
}

func TestDriver_CommandFailures(t *testing.T) {
	tests := map[string]struct {
		prefix string
		call   func(d *Driver, dir string) error
		wantOp string
	}{
		"init": {
			prefix: "git init",
			call: func(d *Driver, dir string) error {
				_, err := d.InitIfAbsent(context.Background(), dir)
				return err
			},
			wantOp: OpInit,
		},
		"stage": {
			prefix: "git add -A",
			call:   func(d *Driver, dir string) error { return d.StageAll(context.Background(), dir) },
			wantOp: OpStage,
		},
		"remote add": {
			prefix: "git remote add origin",
			call: func(d *Driver, dir string) error {
				return d.AddRemote(context.Background(), dir, "origin", "host:/srv/proj.git")
			},
			wantOp: OpRemoteAdd,
		},
		"push": {
			prefix: "git push -u origin main",
			call:   func(d *Driver, dir string) error { return d.Push(context.Background(), dir, "origin", "main") },
			wantOp: OpPush,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fake := testutil.NewFakeRunner().OnExit(tt.prefix, 128, "fatal: nope\n")
			testutil.DumpCallLogOnFailure(t, fake)
			dir := t.TempDir()

			err := tt.call(NewDriver(fake), dir)

			var gitErr *Error
			require.ErrorAs(t, err, &gitErr)
			assert.Equal(t, tt.wantOp, gitErr.Op)
			assert.Equal(t, 128, gitErr.ExitCode)
			assert.Equal(t, "fatal: nope", gitErr.Stderr)
			assert.Contains(t, err.Error(), "exit code 128")
		})
	}
}

func TestDriver_StartError(t *testing.T) {
	d := &Driver{Runner: runner.NewExecRunner(), Binary: filepath.Join(t.TempDir(), "no-git")}

	err := d.StageAll(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, runner.IsStartError(err))
}

func TestSetDebugLogger(t *testing.T) {
	var lines []string
	SetDebugLogger(func(format string, args ...any) { lines = append(lines, format) })
	t.Cleanup(func() { SetDebugLogger(nil) })

	fake := testutil.NewFakeRunner()
	testutil.DumpCallLogOnFailure(t, fake)
	require.NoError(t, NewDriver(fake).StageAll(context.Background(), t.TempDir()))
	assert.NotEmpty(t, lines)
}
