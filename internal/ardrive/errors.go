// Package ardrive drives the external ardrive CLI as a subprocess and
// decodes its output into typed drive and file records. The CLI's output
// format, exit behavior, and flags are not a stable contract, so every call
// goes through the cliout normalizer and tolerant decoding.
package ardrive

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Use errors.Is(err, ardrive.ErrSubprocess) to check.
var (
	ErrBinaryNotFound = errors.New("ardrive: ardrive CLI not found")
	ErrSubprocess     = errors.New("ardrive: ardrive CLI failed")
	ErrTimeout        = errors.New("ardrive: ardrive CLI timed out")
	ErrDecode         = errors.New("ardrive: record does not match expected shape")
)

// installHint is appended to binary-unavailable errors.
const installHint = "install it with 'npm install -g ardrive-cli', add it to the project " +
	"with 'npm install ardrive-cli', or point ARDRIVE_BIN at the executable"

// ExitError is returned when the ardrive CLI exits non-zero. Stderr is kept
// verbatim; Command is the argv that was run (it names the temporary wallet
// path, never the wallet content).
type ExitError struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExitError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "ardrive: command exited with status %d: %s", e.ExitCode, strings.Join(e.Command, " "))

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", e.Stderr)
	}

	if stdout := strings.TrimSpace(e.Stdout); stdout != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", e.Stdout)
	}

	b.WriteString("\nhint: check the drive id and wallet ('sugar ardrive show-wallet'), " +
		"or rerun with --debug to log the full invocation")

	return b.String()
}

func (e *ExitError) Unwrap() error {
	return ErrSubprocess
}

// DecodeError reports the position of a record that could not be decoded.
// One bad record fails the whole listing.
type DecodeError struct {
	Index  int
	Entity string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ardrive: record %d is not a valid %s: %v", e.Index, e.Entity, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}
