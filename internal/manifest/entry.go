// Package manifest builds the deployment cache file ("cache.json") from a
// drive listing or a list of metadata URLs. Items are positional: the key of
// each entry is its zero-based index, and downstream tools use that index as
// the item's identity, so order is preserved end to end.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Entry is one cache item. Hash fields carry the transaction id the link
// was derived from and are written even when empty; readers of the cache
// expect both keys on every item.
type Entry struct {
	Name          string `json:"name"`
	ImageHash     string `json:"image_hash"`
	ImageLink     string `json:"image_link"`
	MetadataHash  string `json:"metadata_hash"`
	MetadataLink  string `json:"metadata_link"`
	OnChain       bool   `json:"onChain"`
	AnimationHash string `json:"animation_hash,omitempty"`
	AnimationLink string `json:"animation_link,omitempty"`
}

// Items is the ordered item list. It marshals as an object keyed "0", "1",
// ... in numeric order.
type Items []Entry

// MarshalJSON writes keys in index order ("2" before "10").
func (items Items) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i := range items {
		if i > 0 {
			buf.WriteByte(',')
		}

		entry, err := json.Marshal(items[i])
		if err != nil {
			return nil, fmt.Errorf("manifest: encoding item %d: %w", i, err)
		}

		buf.WriteString(strconv.Quote(strconv.Itoa(i)))
		buf.WriteByte(':')
		buf.Write(entry)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object whose keys are exactly 0..n-1.
func (items *Items) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*items = nil
		return nil
	}

	var m map[string]Entry
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("manifest: decoding items: %w", err)
	}

	out := make(Items, len(m))
	seen := make([]bool, len(m))

	for key, entry := range m {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(m) || strconv.Itoa(idx) != key {
			return fmt.Errorf("manifest: item key %q: %w", key, ErrNonContiguous)
		}

		out[idx] = entry
		seen[idx] = true
	}

	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("manifest: item %d missing: %w", i, ErrNonContiguous)
		}
	}

	*items = out

	return nil
}

// ErrNonContiguous is returned when item keys are not exactly 0..n-1.
var ErrNonContiguous = errors.New("manifest: item keys must be contiguous integers starting at 0")
