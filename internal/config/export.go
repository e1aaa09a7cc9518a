package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
)

// Formats accepted by Marshal.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Map returns the settings keyed by their config.toml names.
func (s Settings) Map() map[string]any {
	return map[string]any{
		"config_path":               s.ConfigPath,
		"repo_path":                 s.RepoPath,
		"use_ssh_remote":            s.UseSSHRemote,
		"ssh_remote_host":           s.SSHRemoteHost,
		"ssh_remote_repo_path":      s.SSHRemoteRepoPath,
		"ssh_remote_use_bare":       s.SSHRemoteUseBare,
		"ssh_remote_add_git_suffix": s.SSHRemoteAddGitSuffix,
	}
}

// Marshal renders the resolved settings in the given format.
func Marshal(s Settings, format string) ([]byte, error) {
	var parser koanf.Parser
	switch format {
	case FormatTOML, "":
		parser = toml.Parser()
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unknown format %q (want %s, %s or %s)", format, FormatTOML, FormatYAML, FormatJSON)
	}

	k := koanf.New(".")
	for key, value := range s.Map() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
	}

	out, err := k.Marshal(parser)
	if err != nil {
		return nil, fmt.Errorf("marshaling settings as %s: %w", format, err)
	}
	return out, nil
}
