package history

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/repoman/internal/pipeline"
)

func seed(t *testing.T, dir string, n int) {
	t.Helper()
	history := &HistoryFile{}
	for i := range n {
		history.Entries = append(history.Entries, HistoryEntry{
			Timestamp: time.Unix(int64(i), 0).UTC(),
			Name:      fmt.Sprintf("repo-%d", i),
			Status:    "created",
			Duration:  "1s",
		})
	}
	require.NoError(t, SaveHistory(dir, history))
}

func TestWriter_LogEntry(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		existing    int
		maxEntries  int
		wantEntries int
		wantOldest  string
	}{
		"empty history": {
			existing:    0,
			maxEntries:  DefaultMaxEntries,
			wantEntries: 1,
			wantOldest:  "new",
		},
		"append to existing": {
			existing:    5,
			maxEntries:  10,
			wantEntries: 6,
			wantOldest:  "repo-0",
		},
		"prune oldest when max exceeded": {
			existing:    10,
			maxEntries:  10,
			wantEntries: 10,
			wantOldest:  "repo-1",
		},
		"zero max keeps everything": {
			existing:    3,
			maxEntries:  0,
			wantEntries: 4,
			wantOldest:  "repo-0",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tc.existing > 0 {
				seed(t, dir, tc.existing)
			}

			NewWriter(dir, tc.maxEntries, nil).LogEntry(HistoryEntry{Timestamp: time.Now(), Name: "new", Status: "created"})

			history, err := LoadHistory(dir)
			require.NoError(t, err)
			require.Len(t, history.Entries, tc.wantEntries)
			assert.Equal(t, tc.wantOldest, history.Entries[0].Name)
			assert.Equal(t, "new", history.Entries[len(history.Entries)-1].Name)
		})
	}
}

func TestWriter_FailureIsWarning(t *testing.T) {
	t.Parallel()

	var warnings bytes.Buffer
	w := NewWriter(filepath.Join(t.TempDir(), "missing"), DefaultMaxEntries, &warnings)
	w.LogEntry(HistoryEntry{Name: "x"})

	assert.Contains(t, warnings.String(), "Warning: failed to log history")
}

func TestLoadHistory(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		history, err := LoadHistory(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, history.Entries)
	})

	t.Run("corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("entries: [\n"), 0o644))
		_, err := LoadHistory(dir)
		assert.ErrorContains(t, err, "parsing history file")
	})
}

func TestClearHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seed(t, dir, 3)
	require.NoError(t, ClearHistory(dir))

	history, err := LoadHistory(dir)
	require.NoError(t, err)
	assert.Empty(t, history.Entries)
}

func TestEntryFromOutcome(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := EntryFromOutcome(
		pipeline.Request{Name: "proj", Template: "web"},
		pipeline.Outcome{
			Status:   pipeline.StatusFailed,
			Stage:    pipeline.StageRemotePush,
			Message:  "exit code 128",
			Dir:      "/repos/proj",
			Duration: 1234567 * time.Microsecond,
		},
		at,
	)

	assert.Equal(t, HistoryEntry{
		Timestamp: at,
		Name:      "proj",
		Template:  "web",
		Dir:       "/repos/proj",
		Status:    "failed",
		Stage:     "remote-push",
		Message:   "exit code 128",
		Duration:  "1.235s",
	}, entry)
	assert.True(t, entry.Failed())
}

func TestFilter(t *testing.T) {
	t.Parallel()

	entries := []HistoryEntry{{Name: "a"}, {Name: "b"}, {Name: "a"}, {Name: "c"}}

	tests := map[string]struct {
		name  string
		limit int
		want  int
	}{
		"all":          {want: 4},
		"by name":      {name: "a", want: 2},
		"limit":        {limit: 3, want: 3},
		"name + limit": {name: "a", limit: 1, want: 1},
		"no match":     {name: "z", want: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Len(t, Filter(entries, tc.name, tc.limit), tc.want)
		})
	}
}
