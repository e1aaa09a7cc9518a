package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/ariel-frischer/repoman/internal/pipeline"
)

const spinnerInterval = 100 * time.Millisecond

var stageLabels = map[pipeline.Stage]string{
	pipeline.StageExistenceCheck: "Checking target directory",
	pipeline.StageTemplateApply:  "Applying template",
	pipeline.StageVCSInit:        "Initializing git repository",
	pipeline.StageVCSCommit:      "Creating initial commit",
	pipeline.StageRemoteCreate:   "Creating remote repository",
	pipeline.StageRemotePush:     "Pushing to remote",
}

// Label returns the human-readable description of stage.
func Label(stage pipeline.Stage) string {
	if label, ok := stageLabels[stage]; ok {
		return label
	}
	return string(stage)
}

// Display renders stage transitions. It implements pipeline.Observer.
type Display struct {
	w       io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spinner *spinner.Spinner
	verbose bool

	ok, fail, warn, dim *color.Color

	stage   pipeline.Stage
	started time.Time
	now     func() time.Time
}

var _ pipeline.Observer = (*Display)(nil)

// NewDisplay returns a Display writing to w. Skipped stages are only shown
// when verbose is set.
func NewDisplay(w io.Writer, caps TerminalCapabilities, verbose bool) *Display {
	d := &Display{
		w:       w,
		caps:    caps,
		symbols: SelectSymbols(caps),
		verbose: verbose,
		ok:      color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		dim:     color.New(color.Faint),
		now:     time.Now,
	}
	if !caps.SupportsColor {
		for _, c := range []*color.Color{d.ok, d.fail, d.warn, d.dim} {
			c.DisableColor()
		}
	}
	if caps.IsTTY {
		d.spinner = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], spinnerInterval, spinner.WithWriter(w))
	}
	return d
}

func (d *Display) StageStarted(stage pipeline.Stage) {
	d.stage = stage
	d.started = d.now()
	if d.spinner != nil {
		d.spinner.Suffix = " " + Label(stage)
		d.spinner.Start()
	}
}

func (d *Display) StageCompleted(stage pipeline.Stage, detail string) {
	d.stopSpinner()
	line := fmt.Sprintf("%s %s", d.ok.Sprint(d.symbols.Checkmark), Label(stage))
	if detail != "" {
		line += d.dim.Sprintf(" (%s)", detail)
	}
	fmt.Fprintf(d.w, "%s%s\n", line, d.elapsed())
}

func (d *Display) StageSkipped(stage pipeline.Stage, reason string) {
	if !d.verbose {
		return
	}
	fmt.Fprintln(d.w, d.dim.Sprintf("%s %s: %s", d.symbols.Skipped, Label(stage), reason))
}

func (d *Display) StageFailed(stage pipeline.Stage, err error) {
	d.stopSpinner()
	fmt.Fprintf(d.w, "%s %s%s\n", d.fail.Sprint(d.symbols.Failure), Label(stage), d.elapsed())
}

// Warn prints message without ending the running stage.
func (d *Display) Warn(stage pipeline.Stage, message string) {
	running := d.spinner != nil && d.spinner.Active()
	d.stopSpinner()
	fmt.Fprintf(d.w, "%s %s\n", d.warn.Sprint(d.symbols.Warning), d.warn.Sprint(message))
	if running {
		d.spinner.Start()
	}
}

func (d *Display) stopSpinner() {
	if d.spinner != nil && d.spinner.Active() {
		d.spinner.Stop()
	}
}

func (d *Display) elapsed() string {
	if d.started.IsZero() {
		return ""
	}
	elapsed := d.now().Sub(d.started)
	if elapsed < time.Second {
		return ""
	}
	return d.dim.Sprintf(" [%s]", elapsed.Round(100*time.Millisecond))
}
