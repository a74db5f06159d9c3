package cliout

import (
	"encoding/json"
	"errors"
	"strings"
)

// errorMarkers are line prefixes that mean the CLI printed a failure message
// rather than a payload. Matched after trimming the line.
var errorMarkers = []string{
	"Error:",
	"error:",
	"TypeError",
	"ReferenceError",
	"SyntaxError",
	"UnhandledPromiseRejection",
	"Unhandled",
	"ENOENT",
}

// findErrorMarker returns the first line that starts with an error marker.
// Lines that start with JSON punctuation or a quote belong to a payload and
// are never treated as markers, so a record whose name contains "Error:" is
// safe.
func findErrorMarker(text string) (string, bool) {
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsAny(line[:1], `{}[]",`) {
			continue
		}

		for _, m := range errorMarkers {
			if strings.HasPrefix(line, m) {
				return line, true
			}
		}
	}

	return "", false
}

// ExtractJSON finds a JSON document in text. Strategies, in order:
//  1. the whole text;
//  2. the slice from the first '{' or '[' to the last matching '}' or ']';
//  3. the first line that starts with '{' or '[' and parses on its own.
//
// When all fail the error is a *ParseError describing the whole-text attempt.
func ExtractJSON(text string) (json.RawMessage, error) {
	raw, firstErr := parseRaw(text)
	if firstErr == nil {
		return raw, nil
	}

	if raw, ok := extractSlice(text); ok {
		return raw, nil
	}

	if raw, ok := extractLine(text); ok {
		return raw, nil
	}

	return nil, newParseError(text, firstErr)
}

func parseRaw(s string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

func extractSlice(text string) (json.RawMessage, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return nil, false
	}

	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}

	end := strings.LastIndex(text, closer)
	if end <= start {
		return nil, false
	}

	raw, err := parseRaw(text[start : end+1])

	return raw, err == nil
}

func extractLine(text string) (json.RawMessage, bool) {
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") && !strings.HasPrefix(line, "[") {
			continue
		}

		if raw, err := parseRaw(line); err == nil {
			return raw, true
		}
	}

	return nil, false
}

// newParseError converts a decoder error into a ParseError, translating the
// byte offset into a line and column when the decoder reported one.
func newParseError(text string, err error) *ParseError {
	pe := &ParseError{Text: text, Err: err}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		pe.Offset = syntaxErr.Offset
		pe.Line, pe.Column = lineColumn(text, syntaxErr.Offset)
	}

	return pe
}

// lineColumn converts a byte offset into 1-based line and column numbers.
func lineColumn(text string, offset int64) (int, int) {
	if offset < 0 {
		offset = 0
	}

	if offset > int64(len(text)) {
		offset = int64(len(text))
	}

	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	col := len(prefix) - strings.LastIndexByte(prefix, '\n')

	return line, col
}
