package pie

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

// SourceError is a located error together with the text it points into.
type SourceError struct {
	Inner    error
	Location syntax.Location
	Source   string
}

// NewSourceError attaches source to err when err carries a location.
// Anything else is returned unchanged.
func NewSourceError(err error, source string) error {
	var located *syntax.Error
	if errors.As(err, &located) && !located.Loc.IsZero() {
		return &SourceError{Inner: err, Location: located.Loc, Source: source}
	}
	var parse *syntax.ParseError
	if errors.As(err, &parse) {
		return &SourceError{Inner: err, Location: parse.Loc, Source: source}
	}
	return err
}

func (e *SourceError) Unwrap() error {
	return e.Inner
}

// Message is the error without its location prefix.
func (e *SourceError) Message() string {
	var located *syntax.Error
	if errors.As(e.Inner, &located) {
		return located.Msg
	}
	var parse *syntax.ParseError
	if errors.As(e.Inner, &parse) {
		return parse.Msg
	}
	return e.Inner.Error()
}

func (e *SourceError) Error() string {
	return ansi.Strip(e.FormatWithHighlighting())
}

var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	arrowStyle   = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("12"))
	gutterStyle  = lipgloss.NewStyle().Faint(true)
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	caretStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// FormatWithHighlighting renders the message, the location, and the
// surrounding lines with a caret under the offending node.
func (e *SourceError) FormatWithHighlighting() string {
	lines := strings.Split(e.Source, "\n")
	loc := e.Location
	if loc.Line < 1 || loc.Line > len(lines) {
		return e.Inner.Error()
	}

	var result strings.Builder
	fmt.Fprintf(&result, "%s %s\n", errorStyle.Render("Error:"), e.Message())
	fmt.Fprintf(&result, "  %s\n", arrowStyle.Render("--> "+loc.String()))
	fmt.Fprintf(&result, " %s\n", gutterStyle.Render(padLeft("", 3)+" |"))

	start := max(1, loc.Line-2)
	end := min(len(lines), loc.Line+2)
	for i := start; i <= end; i++ {
		num := padLeft(fmt.Sprint(i), 3)
		if i != loc.Line {
			fmt.Fprintf(&result, " %s %s\n", gutterStyle.Render(num+" |"), lines[i-1])
			continue
		}
		fmt.Fprintf(&result, " %s %s\n", currentStyle.Render(num+" |"), lines[i-1])
		// 1 space, 3 for the line number, " | " is 3 more.
		padding := strings.Repeat(" ", 1+3+3+loc.Column-1)
		fmt.Fprintf(&result, "%s%s\n", padding, caretStyle.Render(strings.Repeat("^", max(1, loc.Length))))
	}
	fmt.Fprintf(&result, " %s\n", gutterStyle.Render(padLeft("", 3)+" |"))
	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// FatalError aborts a run: the evaluator was handed something the checker
// should have rejected.
type FatalError struct {
	Violation *core.ContractViolation
	Location  syntax.Location
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: fatal: %s", e.Location, e.Violation)
}

func (e *FatalError) Unwrap() error {
	return e.Violation
}

// Format renders err for a terminal, with color if asked.
func Format(err error, color bool) string {
	var src *SourceError
	if errors.As(err, &src) {
		if color {
			return src.FormatWithHighlighting()
		}
		return src.Error()
	}
	return err.Error()
}
