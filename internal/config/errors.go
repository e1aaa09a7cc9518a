package config

import (
	"errors"
	"fmt"
)

// Operations reported in Error.Op.
const (
	OpLocate    = "locate"
	OpBootstrap = "bootstrap"
	OpParse     = "parse"
	OpExpand    = "expand"
	OpValidate  = "validate"
)

var (
	// ErrHomeUnset is returned when "~" must be expanded but $HOME is unset or empty.
	ErrHomeUnset = errors.New("a configured path references '~', but $HOME is not set")
	// ErrMissingKeys is returned when config.toml lacks required keys.
	ErrMissingKeys = errors.New("missing required keys")
	// ErrWrongType is returned when a config.toml value has the wrong TOML type.
	ErrWrongType = errors.New("wrong value type")
	// ErrNoSelection is returned when input ends before a candidate was chosen.
	ErrNoSelection = errors.New("no configuration location selected")
	// ErrNotDirectory is returned when an explicit config path is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Error reports a failure to locate, create, parse, expand or validate the
// configuration.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
