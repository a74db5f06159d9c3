package cliout

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// utf8BOM is the byte-order mark some Windows tools prepend to output.
const utf8BOM = "\ufeff"

// Clean strips escape sequences, surrounding whitespace, and a leading BOM.
func Clean(raw string) string {
	s := StripANSI(raw)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, utf8BOM)

	return strings.TrimSpace(s)
}

// Normalize converts raw command output into a sequence of JSON records.
// The pipeline runs in a fixed order:
//  1. Clean (ANSI, whitespace, BOM); empty result is ErrEmptyOutput
//  2. Fail early on lines carrying an error marker (*ErrorOutput)
//  3. ExtractJSON (*ParseError)
//  4. Unwrap the envelope (*ShapeError)
func Normalize(raw string, logger *slog.Logger) ([]json.RawMessage, error) {
	text := Clean(raw)
	if text == "" {
		return nil, ErrEmptyOutput
	}

	if line, found := findErrorMarker(text); found {
		return nil, &ErrorOutput{Line: line, Text: text}
	}

	doc, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	records, envelope, err := Unwrap(doc)
	if err != nil {
		return nil, err
	}

	if envelope == EnvelopeObjectMap {
		logger.Debug("output has no wrapper key, using object members as records",
			slog.Int("record_count", len(records)),
		)
	}

	logger.Debug("normalized command output",
		slog.String("envelope", envelope),
		slog.Int("record_count", len(records)),
		slog.Int("raw_bytes", len(raw)),
	)

	return records, nil
}
