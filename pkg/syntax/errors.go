package syntax

import (
	"fmt"
)

// Location represents a location in source code
type Location struct {
	Filename string
	Line     int
	Column   int
	Length   int // Length of the syntax node, in bytes, when it fits on one line
}

func (loc Location) String() string {
	name := loc.Filename
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", name, loc.Line, loc.Column)
}

// IsZero reports whether the location carries no position information.
func (loc Location) IsZero() bool {
	return loc.Line == 0 && loc.Column == 0
}

// Error is a recoverable, located failure produced while checking a
// declaration or running a tactic.
type Error struct {
	Loc Location
	Msg string
}

// Errorf creates a new located error.
func Errorf(loc Location, format string, args ...any) *Error {
	return &Error{
		Loc: loc,
		Msg: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e.Loc.IsZero() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

// ParseError is a malformed-input failure raised while reading source text.
type ParseError struct {
	Loc Location
	Msg string

	// Incomplete is set when the input ended in the middle of a form, so a
	// REPL may keep reading lines.
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

func parseErrorf(loc Location, format string, args ...any) *ParseError {
	return &ParseError{
		Loc: loc,
		Msg: fmt.Sprintf(format, args...),
	}
}
