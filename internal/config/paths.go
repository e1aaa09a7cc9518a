package config

import (
	"path/filepath"
)

// SystemDir is the system-wide configuration directory.
var SystemDir = filepath.Join("/etc", AppName)

// Candidates returns the configuration directories to search, highest
// priority first: $HOME/.config/repoman, $HOME/.repoman, then systemDir.
// An empty home leaves only systemDir.
func Candidates(home, systemDir string) []string {
	var paths []string
	if home != "" {
		paths = append(paths,
			filepath.Join(home, ".config", AppName),
			filepath.Join(home, "."+AppName),
		)
	}
	return append(paths, systemDir)
}
