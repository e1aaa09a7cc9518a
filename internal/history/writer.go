package history

import (
	"fmt"
	"io"
	"time"

	"github.com/ariel-frischer/repoman/internal/pipeline"
)

// Writer appends runs to the history file and prunes old ones.
type Writer struct {
	// Dir is the directory containing the history file.
	Dir string
	// MaxEntries is the maximum number of entries to retain.
	MaxEntries int
	// Warnings receives write failures; history never fails a run.
	Warnings io.Writer
}

// NewWriter creates a new history writer.
func NewWriter(dir string, maxEntries int, warnings io.Writer) *Writer {
	return &Writer{
		Dir:        dir,
		MaxEntries: maxEntries,
		Warnings:   warnings,
	}
}

// LogEntry adds entry to the history file. Failures are reported on
// Warnings and otherwise ignored.
func (w *Writer) LogEntry(entry HistoryEntry) {
	if err := w.Append(entry); err != nil && w.Warnings != nil {
		fmt.Fprintf(w.Warnings, "Warning: failed to log history: %v\n", err)
	}
}

// Append loads the history, appends entry, prunes the oldest entries over
// MaxEntries and saves.
func (w *Writer) Append(entry HistoryEntry) error {
	history, err := LoadHistory(w.Dir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	history.Entries = append(history.Entries, entry)

	if w.MaxEntries > 0 && len(history.Entries) > w.MaxEntries {
		excess := len(history.Entries) - w.MaxEntries
		history.Entries = history.Entries[excess:]
	}

	if err := SaveHistory(w.Dir, history); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// LogRun records a pipeline run.
func (w *Writer) LogRun(req pipeline.Request, outcome pipeline.Outcome, at time.Time) {
	w.LogEntry(EntryFromOutcome(req, outcome, at))
}

// EntryFromOutcome converts a pipeline result to a history entry.
func EntryFromOutcome(req pipeline.Request, outcome pipeline.Outcome, at time.Time) HistoryEntry {
	return HistoryEntry{
		Timestamp: at,
		Name:      req.Name,
		Template:  req.Template,
		Dir:       outcome.Dir,
		Remote:    outcome.Remote,
		Status:    string(outcome.Status),
		Stage:     string(outcome.Stage),
		Message:   outcome.Message,
		Duration:  outcome.Duration.Round(time.Millisecond).String(),
	}
}

// Filter returns the entries named name (all when empty), limited to the
// most recent limit entries when limit is positive.
func Filter(entries []HistoryEntry, name string, limit int) []HistoryEntry {
	var result []HistoryEntry
	for _, entry := range entries {
		if name == "" || entry.Name == name {
			result = append(result, entry)
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}
