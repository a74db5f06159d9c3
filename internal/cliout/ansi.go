package cliout

import "strings"

const (
	esc = 0x1b

	// CSI final bytes are in 0x40–0x7E (ECMA-48 §5.4).
	csiFinalMin = 0x40
	csiFinalMax = 0x7e
)

// StripANSI removes terminal escape sequences. ESC [ starts a CSI sequence
// that runs through its final byte; any other ESC swallows the one byte that
// follows it. This is a best-effort filter for colored CLI output, not a
// terminal emulator: OSC strings and similar are only partially removed.
func StripANSI(s string) string {
	if strings.IndexByte(s, esc) < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != esc {
			b.WriteByte(c)
			continue
		}

		if i+1 >= len(s) {
			break
		}

		if s[i+1] != '[' {
			i++ // drop ESC and the byte after it
			continue
		}

		// CSI: skip parameters and intermediates up to the final byte.
		j := i + 2
		for j < len(s) && (s[j] < csiFinalMin || s[j] > csiFinalMax) {
			j++
		}

		i = j
	}

	return b.String()
}
