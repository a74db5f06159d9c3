package cliout

import (
	"bytes"
	"encoding/json"
	"slices"
)

// WrapperKeys are the object members that may hold the record array, in
// priority order.
var WrapperKeys = []string{"drives", "data", "result", "items", "rows"}

// Detector recognizes one envelope shape. Detect returns the records and true
// when the value has that shape.
type Detector struct {
	Name   string
	Detect func(json.RawMessage) ([]json.RawMessage, bool)
}

// Envelope names reported by Unwrap.
const (
	EnvelopeArray     = "array"
	EnvelopeWrapped   = "wrapped"
	EnvelopeObjectMap = "object-map"
)

// Detectors are tried in order; the first match wins. The object-map
// detector is a best-effort fallback: it takes every object-valued member of
// an object that has no wrapper key and ignores the rest.
var Detectors = []Detector{
	{Name: EnvelopeArray, Detect: detectArray},
	{Name: EnvelopeWrapped, Detect: detectWrapped},
	{Name: EnvelopeObjectMap, Detect: detectObjectMap},
}

// Unwrap applies Detectors to v and returns the records with the name of the
// matching envelope. A value matching none yields a *ShapeError.
func Unwrap(v json.RawMessage) ([]json.RawMessage, string, error) {
	for _, d := range Detectors {
		if records, ok := d.Detect(v); ok {
			return records, d.Name, nil
		}
	}

	return nil, "", &ShapeError{Received: pretty(v)}
}

func kindOf(v json.RawMessage) byte {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return 0
	}

	return v[0]
}

func detectArray(v json.RawMessage) ([]json.RawMessage, bool) {
	if kindOf(v) != '[' {
		return nil, false
	}

	var records []json.RawMessage
	if err := json.Unmarshal(v, &records); err != nil {
		return nil, false
	}

	if records == nil {
		records = []json.RawMessage{}
	}

	return records, true
}

func detectWrapped(v json.RawMessage) ([]json.RawMessage, bool) {
	members, ok := objectMembers(v)
	if !ok {
		return nil, false
	}

	for _, key := range WrapperKeys {
		inner, present := members[key]
		if !present {
			continue
		}

		if records, ok := detectArray(inner); ok {
			return records, true
		}
	}

	return nil, false
}

// detectObjectMap handles {"id1": {...}, "id2": {...}}. Records are ordered
// by member name so results are deterministic.
func detectObjectMap(v json.RawMessage) ([]json.RawMessage, bool) {
	members, ok := objectMembers(v)
	if !ok {
		return nil, false
	}

	keys := make([]string, 0, len(members))
	for k, member := range members {
		if kindOf(member) == '{' {
			keys = append(keys, k)
		}
	}

	if len(keys) == 0 {
		return nil, false
	}

	slices.Sort(keys)

	records := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		records = append(records, members[k])
	}

	return records, true
}

func objectMembers(v json.RawMessage) (map[string]json.RawMessage, bool) {
	if kindOf(v) != '{' {
		return nil, false
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(v, &members); err != nil {
		return nil, false
	}

	return members, true
}

func pretty(v json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, v, "", "  "); err != nil {
		return string(v)
	}

	return buf.String()
}
