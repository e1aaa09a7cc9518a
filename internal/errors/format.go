package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// style wraps a color so it can be switched off per call; color.NoColor is
// global and FormatErrorPlain must not depend on it.
type style struct {
	c       *color.Color
	enabled bool
}

func (s style) apply(text string) string {
	if !s.enabled {
		return text
	}
	return s.c.Sprint(text)
}

type palette struct {
	label, message, category, stage, fix, usage, bullet style
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) style {
		return style{c: color.New(attrs...), enabled: enabled}
	}
	return palette{
		label:    mk(color.FgRed, color.Bold),
		message:  mk(color.FgRed),
		category: mk(color.FgYellow),
		stage:    mk(color.FgMagenta),
		fix:      mk(color.FgGreen, color.Bold),
		usage:    mk(color.FgCyan),
		bullet:   mk(color.FgGreen),
	}
}

// FormatError renders err for the terminal, colored unless color output is
// disabled.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}
	return render(err, newPalette(!color.NoColor))
}

// FormatErrorPlain renders err without colors.
func FormatErrorPlain(err *CLIError) string {
	if err == nil {
		return ""
	}
	return render(err, newPalette(false))
}

// render produces:
//
//	Error [<category>] (<stage>): <message>
//
//	Usage: <usage>
//
//	To fix this:
//	  • <step>
func render(err *CLIError, p palette) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s [%s]", p.label.apply("Error"), p.category.apply(err.Category.String()))
	if err.Stage != "" {
		fmt.Fprintf(&sb, " (%s)", p.stage.apply(err.Stage))
	}
	fmt.Fprintf(&sb, ": %s\n", p.message.apply(err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s%s\n", p.usage.apply("Usage: "), p.usage.apply(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", p.fix.apply("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", p.bullet.apply("•"), step)
		}
	}

	return sb.String()
}

// FprintError writes the formatted err to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}

// FprintAny writes err to w, formatting it as a CLIError when it is one and
// as a Runtime error otherwise.
func FprintAny(w io.Writer, err error) {
	if err == nil {
		return
	}
	if cliErr := AsCLIError(err); cliErr != nil {
		FprintError(w, cliErr)
		return
	}
	FprintError(w, Wrap(err, Runtime))
}
