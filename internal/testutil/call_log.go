package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// CallLogEntry is the YAML form of a CallRecord.
type CallLogEntry struct {
	Command   string `yaml:"command"`
	Dir       string `yaml:"dir,omitempty"`
	Timestamp string `yaml:"timestamp"`
	ExitCode  int    `yaml:"exit_code"`
	Error     string `yaml:"error,omitempty"`
}

// CallLog wraps []CallLogEntry for YAML serialization.
type CallLog struct {
	Entries []CallLogEntry `yaml:"entries"`
}

// WriteCallLog writes the recorded calls to a YAML file.
func WriteCallLog(path string, records []CallRecord) error {
	log := CallLog{
		Entries: make([]CallLogEntry, 0, len(records)),
	}
	for _, r := range records {
		log.Entries = append(log.Entries, callRecordToEntry(r))
	}

	data, err := yaml.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshaling call log to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing call log to %s: %w", path, err)
	}
	return nil
}

// DumpCallLogOnFailure writes the calls f recorded to a YAML file under the
// system temp directory when t fails, and logs its path.
func DumpCallLogOnFailure(t testing.TB, f *FakeRunner) {
	t.Helper()
	t.Cleanup(func() {
		if !t.Failed() {
			return
		}
		path, err := dumpCallLog(os.TempDir(), t.Name(), f.Calls())
		if err != nil {
			t.Logf("dumping call log: %v", err)
			return
		}
		t.Logf("runner calls written to %s", path)
	})
}

var testNameReplacer = strings.NewReplacer("/", "_", " ", "_", string(os.PathSeparator), "_")

func dumpCallLog(dir, testName string, records []CallRecord) (string, error) {
	f, err := os.CreateTemp(dir, "repoman-calls-"+testNameReplacer.Replace(testName)+"-*.yml")
	if err != nil {
		return "", fmt.Errorf("creating call log: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing call log: %w", err)
	}
	return path, WriteCallLog(path, records)
}

func callRecordToEntry(r CallRecord) CallLogEntry {
	entry := CallLogEntry{
		Command:   r.CommandLine(),
		Dir:       r.Dir,
		Timestamp: r.Timestamp.Format(time.RFC3339Nano),
		ExitCode:  r.ExitCode,
	}
	if r.Error != nil {
		entry.Error = r.Error.Error()
	}
	return entry
}

// ReadCallLog reads a YAML call log file.
func ReadCallLog(path string) (*CallLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading call log from %s: %w", path, err)
	}

	var log CallLog
	if err := yaml.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("unmarshaling call log YAML: %w", err)
	}
	return &log, nil
}

// Commands returns the command lines in the log, in order.
func (log *CallLog) Commands() []string {
	out := make([]string, len(log.Entries))
	for i, e := range log.Entries {
		out[i] = e.Command
	}
	return out
}

// HasError returns true if the entry has a non-empty error string.
func (e CallLogEntry) HasError() bool {
	return e.Error != ""
}
