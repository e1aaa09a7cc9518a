package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Resolver finds or creates the configuration directory and produces the
// process Settings.
type Resolver struct {
	// ExplicitDir skips the candidate search (the --config flag).
	ExplicitDir string
	// SystemDir is the last candidate; defaults to SystemDir.
	SystemDir string
	// LookupEnv reads HOME and the bundle override; defaults to os.LookupEnv.
	LookupEnv LookupEnvFunc
	// Stdin is read when the user has to pick a location.
	Stdin io.Reader
	// Stderr receives the candidate list and prompt.
	Stderr io.Writer
	// Bundle overrides the default bundle lookup.
	Bundle *Bundle
}

// NewResolver returns a Resolver reading the process environment.
func NewResolver(stdin io.Reader, stderr io.Writer) *Resolver {
	return &Resolver{
		SystemDir: SystemDir,
		LookupEnv: os.LookupEnv,
		Stdin:     stdin,
		Stderr:    stderr,
	}
}

// Resolve locates the configuration directory, parses it, expands home
// shorthand and validates the result.
func (r *Resolver) Resolve() (Settings, error) {
	dir, err := r.Locate()
	if err != nil {
		return Settings{}, err
	}

	s, err := Load(dir)
	if err != nil {
		return Settings{}, err
	}

	s, err = Expand(s, r.lookupEnv())
	if err != nil {
		return Settings{}, err
	}

	if err := Validate(s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Locate returns the configuration directory. With ExplicitDir set it must
// exist. Otherwise the first candidate that is an existing directory wins;
// when none exists the user picks one and it is bootstrapped from the
// default bundle.
func (r *Resolver) Locate() (string, error) {
	if r.ExplicitDir != "" {
		return r.locateExplicit()
	}

	candidates := r.Candidates()
	if dir, ok := FirstExisting(candidates); ok {
		return dir, nil
	}

	dir, err := r.prompt(candidates)
	if err != nil {
		return "", err
	}

	var bundle Bundle
	if r.Bundle != nil {
		bundle = *r.Bundle
	} else {
		bundle = FindBundle(r.lookupEnv())
	}
	if err := Bootstrap(dir, bundle); err != nil {
		return "", err
	}
	fmt.Fprintf(r.stderr(), "created configuration in %s\n", dir)
	return dir, nil
}

// Candidates returns the search list for the current environment.
func (r *Resolver) Candidates() []string {
	home, _ := r.lookupEnv()("HOME")
	systemDir := r.SystemDir
	if systemDir == "" {
		systemDir = SystemDir
	}
	return Candidates(home, systemDir)
}

// FirstExisting returns the first path that exists and is a directory.
func FirstExisting(candidates []string) (string, bool) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func (r *Resolver) locateExplicit() (string, error) {
	dir, err := filepath.Abs(r.ExplicitDir)
	if err != nil {
		return "", &Error{Op: OpLocate, Path: r.ExplicitDir, Err: err}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", &Error{Op: OpLocate, Path: dir, Err: err}
	}
	if !info.IsDir() {
		return "", &Error{Op: OpLocate, Path: dir, Err: ErrNotDirectory}
	}
	return dir, nil
}

// prompt lists the candidates and reads lines until one holds a valid index.
// Malformed or out-of-range input re-prompts; end of input is an error.
func (r *Resolver) prompt(candidates []string) (string, error) {
	w := r.stderr()
	fmt.Fprintln(w, "no config found.")
	fmt.Fprintln(w, "please choose one of the following locations to create one:")
	for i, path := range candidates {
		fmt.Fprintf(w, "%d: %s\n", i, path)
	}

	if r.Stdin == nil {
		return "", &Error{Op: OpLocate, Err: ErrNoSelection}
	}
	reader := bufio.NewReader(r.Stdin)

	for {
		fmt.Fprint(w, "> ")

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", &Error{Op: OpLocate, Err: fmt.Errorf("reading selection: %w", err)}
		}

		if idx, ok := parseChoice(line, len(candidates)); ok {
			return candidates[idx], nil
		}

		if err != nil {
			return "", &Error{Op: OpLocate, Err: ErrNoSelection}
		}
		if strings.TrimSpace(line) != "" {
			fmt.Fprintf(w, "invalid choice %q, enter a number between 0 and %d\n", strings.TrimSpace(line), len(candidates)-1)
		}
	}
}

func parseChoice(line string, n int) (int, bool) {
	idx, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

func (r *Resolver) lookupEnv() LookupEnvFunc {
	if r.LookupEnv == nil {
		return os.LookupEnv
	}
	return r.LookupEnv
}

func (r *Resolver) stderr() io.Writer {
	if r.Stderr == nil {
		return io.Discard
	}
	return r.Stderr
}
