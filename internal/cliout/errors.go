// Package cliout turns the loosely structured output of external CLIs into
// JSON records. It strips terminal control sequences, locates a JSON document
// in noisy text, and unwraps the known result envelopes.
package cliout

import (
	"errors"
	"fmt"
)

// Sentinel errors for output classification.
// Use errors.Is(err, cliout.ErrUnparseable) to check.
var (
	ErrEmptyOutput       = errors.New("cliout: command produced no output")
	ErrErrorOutput       = errors.New("cliout: command printed an error")
	ErrUnparseable       = errors.New("cliout: output is not valid JSON")
	ErrUnrecognizedShape = errors.New("cliout: unrecognized JSON shape")
)

// maxExcerpt bounds how much raw output is quoted in error messages.
const maxExcerpt = 2000

// ErrorOutput is returned when the output carries an error message instead
// of a payload. Text is the full cleaned output.
type ErrorOutput struct {
	Line string // the line that matched an error marker
	Text string
}

func (e *ErrorOutput) Error() string {
	return fmt.Sprintf("cliout: command reported an error: %s", e.Line)
}

func (e *ErrorOutput) Unwrap() error {
	return ErrErrorOutput
}

// ParseError is returned when no extraction strategy found valid JSON.
// Line and Column locate the parser's complaint in Text (1-based); both are
// zero when the parser gave no position.
type ParseError struct {
	Text   string
	Line   int
	Column int
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("cliout: output is not valid JSON (line %d, column %d: %v); output was:\n%s",
			e.Line, e.Column, e.Err, excerpt(e.Text))
	}

	return fmt.Sprintf("cliout: output is not valid JSON (%v); output was:\n%s", e.Err, excerpt(e.Text))
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrUnparseable, e.Err}
}

// ShapeError is returned when the JSON parsed but matched no known envelope.
// Received is the pretty-printed value.
type ShapeError struct {
	Received string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("cliout: expected an array of records or an object wrapping one "+
		"(drives, data, result, items, rows), received:\n%s", excerpt(e.Received))
}

func (e *ShapeError) Unwrap() error {
	return ErrUnrecognizedShape
}

func excerpt(s string) string {
	if len(s) <= maxExcerpt {
		return s
	}

	return s[:maxExcerpt] + "\n... (truncated)"
}
