package config

import (
	"strings"
)

// HomeToken is the home-directory shorthand expanded in path settings.
const HomeToken = "~"

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// ExpandHome replaces every HomeToken in value with $HOME. Values without the
// token are returned unchanged without consulting the environment. The scan
// only moves forward over the unconsumed input, so a $HOME that itself
// contains "~" cannot cause another round of substitution.
func ExpandHome(value string, lookupEnv LookupEnvFunc) (string, error) {
	if !strings.Contains(value, HomeToken) {
		return value, nil
	}

	home, ok := lookupEnv("HOME")
	if !ok || home == "" {
		return "", ErrHomeUnset
	}

	var b strings.Builder
	rest := value
	for {
		i := strings.Index(rest, HomeToken)
		if i < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:i])
		b.WriteString(home)
		rest = rest[i+len(HomeToken):]
	}
}

// Expand returns s with home shorthand expanded in its path-like fields.
// Only RepoPath is path-like; ConfigPath is always absolute already.
func Expand(s Settings, lookupEnv LookupEnvFunc) (Settings, error) {
	repoPath, err := ExpandHome(s.RepoPath, lookupEnv)
	if err != nil {
		return Settings{}, &Error{Op: OpExpand, Path: "repo_path", Err: err}
	}
	s.RepoPath = repoPath
	return s, nil
}
