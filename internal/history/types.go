// Package history records repository creation runs in a YAML file inside the
// configuration directory.
package history

import "time"

// FileName is the history file inside the configuration directory.
const FileName = "history.yml"

// DefaultMaxEntries caps the number of runs kept.
const DefaultMaxEntries = 200

// HistoryFile is the on-disk document.
type HistoryFile struct {
	Entries []HistoryEntry `yaml:"entries"`
}

// HistoryEntry describes one run of the init pipeline.
type HistoryEntry struct {
	Timestamp time.Time `yaml:"timestamp"`
	Name      string    `yaml:"name"`
	Template  string    `yaml:"template,omitempty"`
	Dir       string    `yaml:"dir"`
	Remote    string    `yaml:"remote,omitempty"`
	Status    string    `yaml:"status"`
	Stage     string    `yaml:"stage,omitempty"`
	Message   string    `yaml:"message,omitempty"`
	Duration  string    `yaml:"duration"`
}

// Failed reports whether the run did not create a repository.
func (e HistoryEntry) Failed() bool {
	return e.Stage != ""
}
