package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/repoman/internal/runner"
)

func TestWriteAndReadCallLog(t *testing.T) {
	tests := map[string]struct {
		records      []CallRecord
		wantCommands []string
		wantDir      string
		wantError    string
		wantExitCode int
	}{
		"single record with all fields": {
			records: []CallRecord{
				{
					Name:      "git",
					Args:      []string{"commit", "--allow-empty", "-m", "Initial commit"},
					Dir:       "/repos/proj",
					Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
					ExitCode:  1,
					Error:     errors.New("nothing to commit"),
				},
			},
			wantCommands: []string{"git commit --allow-empty -m Initial commit"},
			wantDir:      "/repos/proj",
			wantError:    "nothing to commit",
			wantExitCode: 1,
		},
		"multiple records keep order": {
			records: []CallRecord{
				{Name: "git", Args: []string{"init", "/repos/proj"}},
				{Name: "git", Args: []string{"add", "-A"}, Dir: "/repos/proj"},
				{Name: "ssh", Args: []string{"host", "git init --bare '/srv/proj.git'"}},
			},
			wantCommands: []string{"git init /repos/proj", "git add -A", "ssh host git init --bare '/srv/proj.git'"},
		},
		"empty records": {
			records:      []CallRecord{},
			wantCommands: []string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "calls.yaml")

			require.NoError(t, WriteCallLog(path, tt.records))
			log, err := ReadCallLog(path)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCommands, log.Commands())
			if len(log.Entries) == 0 {
				return
			}
			first := log.Entries[0]
			assert.Equal(t, tt.wantDir, first.Dir)
			assert.Equal(t, tt.wantError, first.Error)
			assert.Equal(t, tt.wantError != "", first.HasError())
			assert.Equal(t, tt.wantExitCode, first.ExitCode)
		})
	}
}

func TestReadCallLog_Errors(t *testing.T) {
	tests := map[string]struct {
		setup   func(t *testing.T) string
		wantErr string
	}{
		"missing file": {
			setup:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") },
			wantErr: "reading call log",
		},
		"invalid yaml": {
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "bad.yaml")
				require.NoError(t, os.WriteFile(path, []byte("entries: [\n"), 0o644))
				return path
			},
			wantErr: "unmarshaling call log YAML",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCallLog(tt.setup(t))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDumpCallLog(t *testing.T) {
	dir := t.TempDir()
	records := []CallRecord{
		{Name: "git", Args: []string{"init", "/repos/proj"}},
		{Name: "git", Args: []string{"add", "-A"}, Dir: "/repos/proj"},
	}

	path, err := dumpCallLog(dir, "TestPipeline/remote push fails", records)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "TestPipeline_remote_push_fails")

	log, err := ReadCallLog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"git init /repos/proj", "git add -A"}, log.Commands())
}

// recordingTB captures cleanups and logs so failure handling can be driven
// without failing the real test.
type recordingTB struct {
	testing.TB
	failed   bool
	cleanups []func()
	logs     []string
}

func (r *recordingTB) Helper()      {}
func (r *recordingTB) Failed() bool { return r.failed }
func (r *recordingTB) Name() string { return "TestRecording" }

func (r *recordingTB) Cleanup(fn func()) {
	r.cleanups = append(r.cleanups, fn)
}

func (r *recordingTB) Logf(format string, args ...any) {
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func TestDumpCallLogOnFailure(t *testing.T) {
	tests := map[string]struct {
		failed  bool
		wantLog bool
	}{
		"passing test writes nothing": {failed: false, wantLog: false},
		"failing test writes the log": {failed: true, wantLog: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fake := NewFakeRunner()
			_, err := fake.Run(context.Background(), runner.Command{Name: "git", Args: []string{"status"}})
			require.NoError(t, err)

			tb := &recordingTB{TB: t, failed: tt.failed}
			DumpCallLogOnFailure(tb, fake)
			require.Len(t, tb.cleanups, 1)
			tb.cleanups[0]()

			if !tt.wantLog {
				assert.Empty(t, tb.logs)
				return
			}
			require.Len(t, tb.logs, 1)
			path := strings.TrimPrefix(tb.logs[0], "runner calls written to ")
			t.Cleanup(func() { os.Remove(path) })

			log, err := ReadCallLog(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"git status"}, log.Commands())
		})
	}
}
