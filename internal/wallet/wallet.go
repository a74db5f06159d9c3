// Package wallet resolves, stores, and materializes the ArDrive wallet used
// to sign requests made by the external ardrive CLI. Wallet content is
// treated as opaque text: it is never logged, never placed on a command
// line, and only parsed for the redacted "show" view.
package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// FilePerms restricts wallet files to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the wallet store directory.
const DirPerms = 0o700

// ErrNoWallet is returned when none of the resolution sources yielded a
// wallet.
var ErrNoWallet = errors.New(
	"wallet: no ardrive wallet provided: pass -w/--wallet <file>, " +
		"set the ARDRIVE_WALLET environment variable to the wallet JSON, " +
		"or run 'sugar ardrive set-wallet <file>' to store one")

// Source records where a credential was found. Diagnostics only.
type Source int

// Resolution sources, in priority order.
const (
	SourceExplicitPath Source = iota + 1
	SourceEnvironment
	SourceStoredFile
)

func (s Source) String() string {
	switch s {
	case SourceExplicitPath:
		return "explicit-path"
	case SourceEnvironment:
		return "environment"
	case SourceStoredFile:
		return "stored-file"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Credential is resolved wallet content plus where it came from.
// Path is empty for SourceEnvironment.
type Credential struct {
	Content string
	Source  Source
	Path    string
}

// String never includes the wallet content, so a Credential can be passed to
// fmt or slog without leaking key material.
func (c *Credential) String() string {
	if c.Path == "" {
		return fmt.Sprintf("wallet(%s, %d bytes)", c.Source, len(c.Content))
	}

	return fmt.Sprintf("wallet(%s %s, %d bytes)", c.Source, c.Path, len(c.Content))
}

// LogValue makes slog render the redacted String form.
func (c *Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

// Fingerprint identifies the wallet without revealing it: the hex SHA-256
// of the trimmed content. The same key read from a file or from
// ARDRIVE_WALLET has the same fingerprint.
func (c *Credential) Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(c.Content)))

	return hex.EncodeToString(sum[:])
}
