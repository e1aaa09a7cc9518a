// Package config resolves repoman's settings. The configuration directory is
// found by searching a fixed list of candidates (~/.config/repoman,
// ~/.repoman, /etc/repoman), or created interactively from the default bundle
// on first run. Its config.toml is loaded with koanf, REPOMAN_* environment
// variables override file values, and "~" in path settings is expanded.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppName names the configuration directories and the environment prefix.
const AppName = "repoman"

// FileName is the settings file inside the configuration directory.
const FileName = "config.toml"

// TemplatesDirName is the templates directory inside the configuration directory.
const TemplatesDirName = "templates"

// envPrefix is the prefix for environment overrides, e.g. REPOMAN_REPO_PATH.
const envPrefix = "REPOMAN_"

// Settings is the resolved configuration. It is built once per process by
// Resolver.Resolve and passed by value afterwards.
type Settings struct {
	// ConfigPath is the absolute configuration directory. It is injected by
	// the loader, never read from config.toml.
	ConfigPath string `koanf:"config_path"`

	// RepoPath is the root under which new repositories are created.
	// Absolute and free of "~" once resolution has finished.
	RepoPath string `koanf:"repo_path"`

	UseSSHRemote          bool   `koanf:"use_ssh_remote"`
	SSHRemoteHost         string `koanf:"ssh_remote_host"`
	SSHRemoteRepoPath     string `koanf:"ssh_remote_repo_path"`
	SSHRemoteUseBare      bool   `koanf:"ssh_remote_use_bare"`
	SSHRemoteAddGitSuffix bool   `koanf:"ssh_remote_add_git_suffix"`
}

// RequiredKeys lists the keys config.toml (or the environment) must provide.
var RequiredKeys = []string{
	"repo_path",
	"use_ssh_remote",
	"ssh_remote_host",
	"ssh_remote_repo_path",
	"ssh_remote_use_bare",
	"ssh_remote_add_git_suffix",
}

// TemplatesDir returns the directory templates are resolved against.
func (s Settings) TemplatesDir() string {
	return filepath.Join(s.ConfigPath, TemplatesDirName)
}

// File returns the path of config.toml.
func (s Settings) File() string {
	return filepath.Join(s.ConfigPath, FileName)
}

// Load parses dir/config.toml into Settings. config_path is set to the
// absolute dir before the file is merged, and REPOMAN_* variables are
// applied last. File values must have the exact TOML type; environment
// values are converted. A missing file, malformed TOML, a missing required key or a
// value of the wrong type is returned as *Error.
func Load(dir string) (Settings, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Settings{}, &Error{Op: OpParse, Path: dir, Err: err}
	}
	path := filepath.Join(absDir, FileName)

	k := koanf.New(".")
	if err := k.Set("config_path", absDir); err != nil {
		return Settings{}, &Error{Op: OpParse, Path: path, Err: fmt.Errorf("setting config_path: %w", err)}
	}

	if _, err := os.Stat(path); err != nil {
		return Settings{}, &Error{Op: OpParse, Path: path, Err: err}
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return Settings{}, &Error{Op: OpParse, Path: path, Err: err}
	}
	if err := k.Set("config_path", absDir); err != nil {
		return Settings{}, &Error{Op: OpParse, Path: path, Err: fmt.Errorf("setting config_path: %w", err)}
	}

	// File values are typed TOML and must match exactly. Only the string
	// environment overrides below are converted.
	var fileSettings Settings
	if err := unmarshalStrict(k, &fileSettings); err != nil {
		return Settings{}, &Error{Op: OpParse, Path: path, Err: fmt.Errorf("%w: %v", ErrWrongType, err)}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return Settings{}, &Error{Op: OpParse, Path: path, Err: fmt.Errorf("loading environment overrides: %w", err)}
	}

	// A config.toml that declares config_path must not win over the
	// directory it was actually read from.
	if err := k.Set("config_path", absDir); err != nil {
		return Settings{}, &Error{Op: OpParse, Path: path, Err: fmt.Errorf("setting config_path: %w", err)}
	}

	if missing := missingKeys(k); len(missing) > 0 {
		return Settings{}, &Error{
			Op:   OpParse,
			Path: path,
			Err:  fmt.Errorf("%w: %s", ErrMissingKeys, strings.Join(missing, ", ")),
		}
	}

	// REPOMAN_USE_SSH_REMOTE=false arrives as a string; weak decoding
	// converts it.
	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, &Error{Op: OpParse, Path: path, Err: err}
	}
	return s, nil
}

func unmarshalStrict(k *koanf.Koanf, out *Settings) error {
	return k.UnmarshalWithConf("", out, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           out,
			TagName:          "koanf",
			WeaklyTypedInput: false,
		},
	})
}

func missingKeys(k *koanf.Koanf) []string {
	var missing []string
	for _, key := range RequiredKeys {
		if !k.Exists(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// envTransform converts environment variable names to config keys.
// REPOMAN_REPO_PATH -> repo_path. REPOMAN_CONFIG_PATH is dropped.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if key == "config_path" || key == "default_config" {
		return ""
	}
	return key
}
