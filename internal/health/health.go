// Package health checks that repoman's external tools and configured
// directories are usable. It backs the 'repoman doctor' command.
package health

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ariel-frischer/repoman/internal/config"
	"github.com/ariel-frischer/repoman/internal/runner"
)

const maxConcurrentChecks = 4

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

func (r *HealthReport) add(check CheckResult) {
	r.Checks = append(r.Checks, check)
	if !check.Passed {
		r.Passed = false
	}
}

// Checker runs health checks.
type Checker struct {
	Runner   runner.Runner
	LookPath func(file string) (string, error)
}

// NewChecker returns a Checker using the real PATH.
func NewChecker(r runner.Runner) *Checker {
	return &Checker{Runner: r, LookPath: exec.LookPath}
}

// Run runs all checks. settings may be nil when configuration could not be
// resolved; the configuration error is then reported as a failed check.
// Checks run concurrently; results keep a fixed order.
func (c *Checker) Run(ctx context.Context, settings *config.Settings, cfgErr error) *HealthReport {
	checks := []func() CheckResult{
		func() CheckResult { return c.CheckGit(ctx) },
	}

	if settings == nil {
		msg := "not resolved"
		if cfgErr != nil {
			msg = cfgErr.Error()
		}
		checks = append(checks, func() CheckResult {
			return CheckResult{Name: "Configuration", Passed: false, Message: msg}
		})
	} else {
		checks = append(checks,
			func() CheckResult { return CheckResult{Name: "Configuration", Passed: true, Message: settings.File()} },
			func() CheckResult { return CheckTemplatesDir(settings.TemplatesDir()) },
			func() CheckResult { return CheckRepoPath(settings.RepoPath) },
		)
		if settings.UseSSHRemote {
			checks = append(checks, func() CheckResult { return c.CheckTool("ssh") })
		}
	}

	results := make([]CheckResult, len(checks))
	var g errgroup.Group
	g.SetLimit(maxConcurrentChecks)
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check()
			return nil
		})
	}
	_ = g.Wait()

	report := &HealthReport{Passed: true}
	for _, r := range results {
		report.add(r)
	}
	return report
}

// CheckTool checks that name is on PATH.
func (c *Checker) CheckTool(name string) CheckResult {
	path, err := c.LookPath(name)
	if err != nil {
		return CheckResult{Name: name, Passed: false, Message: name + " not found in PATH"}
	}
	return CheckResult{Name: name, Passed: true, Message: path}
}

// CheckGit checks that git is on PATH and reports its version.
func (c *Checker) CheckGit(ctx context.Context) CheckResult {
	check := c.CheckTool("git")
	if !check.Passed {
		return check
	}

	res, err := c.Runner.Run(ctx, runner.Command{Name: check.Message, Args: []string{"--version"}})
	if err != nil || !res.Success() {
		return CheckResult{Name: "git", Passed: false, Message: "git --version failed"}
	}
	check.Message = strings.TrimSpace(res.Stdout)
	return check
}

// CheckTemplatesDir checks that the templates directory exists. A missing
// directory only means no templates are available, which is still valid.
func CheckTemplatesDir(dir string) CheckResult {
	info, err := os.Stat(dir)
	switch {
	case err != nil && os.IsNotExist(err):
		return CheckResult{Name: "Templates", Passed: true, Message: fmt.Sprintf("%s does not exist (no templates)", dir)}
	case err != nil:
		return CheckResult{Name: "Templates", Passed: false, Message: err.Error()}
	case !info.IsDir():
		return CheckResult{Name: "Templates", Passed: false, Message: fmt.Sprintf("%s is not a directory", dir)}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return CheckResult{Name: "Templates", Passed: false, Message: err.Error()}
	}
	return CheckResult{Name: "Templates", Passed: true, Message: fmt.Sprintf("%d in %s", len(entries), dir)}
}

// CheckRepoPath checks that repositories can be created under dir: either
// it is a directory, or its nearest existing ancestor is.
func CheckRepoPath(dir string) CheckResult {
	for path := dir; ; path = filepath.Dir(path) {
		info, err := os.Stat(path)
		if err == nil {
			if !info.IsDir() {
				return CheckResult{Name: "Repository root", Passed: false, Message: fmt.Sprintf("%s is not a directory", path)}
			}
			if path != dir {
				return CheckResult{Name: "Repository root", Passed: true, Message: fmt.Sprintf("%s (will be created)", dir)}
			}
			return CheckResult{Name: "Repository root", Passed: true, Message: dir}
		}
		if !os.IsNotExist(err) {
			return CheckResult{Name: "Repository root", Passed: false, Message: err.Error()}
		}
		if filepath.Dir(path) == path {
			return CheckResult{Name: "Repository root", Passed: false, Message: fmt.Sprintf("no existing ancestor of %s", dir)}
		}
	}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var output string
	for _, check := range report.Checks {
		if check.Passed {
			output += fmt.Sprintf("✓ %s: %s\n", check.Name, check.Message)
		} else {
			output += fmt.Sprintf("✗ %s: %s\n", check.Name, check.Message)
		}
	}
	return output
}
