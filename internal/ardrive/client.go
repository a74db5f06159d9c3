package ardrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tonimelisma/sugar-cli/internal/cliout"
	"github.com/tonimelisma/sugar-cli/internal/wallet"
)

// Invoker runs one ardrive invocation. *Runner satisfies it.
type Invoker interface {
	Run(ctx context.Context, inv Invocation, cred *wallet.Credential) (*Result, error)
}

// Client exposes typed ardrive listings.
type Client struct {
	invoker Invoker
	logger  *slog.Logger
}

// NewClient returns a Client backed by invoker.
func NewClient(invoker Invoker, logger *slog.Logger) *Client {
	return &Client{invoker: invoker, logger: logger}
}

// ListAllDrives returns every drive owned by the wallet.
func (c *Client) ListAllDrives(ctx context.Context, cred *wallet.Credential) ([]Drive, error) {
	inv := Invocation{Op: OpListAllDrives}

	records, err := c.records(ctx, inv, cred)
	if err != nil {
		return nil, err
	}

	drives, err := DecodeDrives(records)
	if err != nil {
		return nil, fmt.Errorf("ardrive: %s: %w", inv.Op, err)
	}

	return drives, nil
}

// ListDrive returns the top-level entries of a drive, folders included.
func (c *Client) ListDrive(ctx context.Context, cred *wallet.Credential, driveID string) ([]FileEntry, error) {
	inv := Invocation{Op: OpListDrive, DriveID: driveID}

	records, err := c.records(ctx, inv, cred)
	if err != nil {
		return nil, err
	}

	entries, err := DecodeFiles(records)
	if err != nil {
		return nil, fmt.Errorf("ardrive: %s %s: %w", inv.Op, driveID, err)
	}

	return entries, nil
}

// ListDriveFiles returns every file in a drive, recursively, in listing
// order. Folder entries are dropped.
func (c *Client) ListDriveFiles(ctx context.Context, cred *wallet.Credential, driveID string) ([]FileEntry, error) {
	inv := Invocation{Op: OpListDriveFiles, DriveID: driveID}

	records, err := c.records(ctx, inv, cred)
	if err != nil {
		return nil, err
	}

	entries, err := DecodeFiles(records)
	if err != nil {
		return nil, fmt.Errorf("ardrive: %s %s: %w", inv.Op, driveID, err)
	}

	files := entries[:0]
	for i := range entries {
		if entries[i].IsFile() {
			files = append(files, entries[i])
		}
	}

	if dropped := len(entries) - len(files); dropped > 0 {
		c.logger.Debug("dropped non-file entries from listing",
			slog.String("drive_id", driveID),
			slog.Int("dropped", dropped),
			slog.Int("files", len(files)),
		)
	}

	unresolvable := 0
	for i := range files {
		if !files[i].Resolvable() {
			unresolvable++
		}
	}

	if unresolvable > 0 {
		c.logger.Warn("listing has files without transaction ids",
			slog.String("drive_id", driveID),
			slog.Int("count", unresolvable),
		)
	}

	return files, nil
}

// records runs inv and normalizes its stdout.
func (c *Client) records(ctx context.Context, inv Invocation, cred *wallet.Credential) ([]json.RawMessage, error) {
	result, err := c.invoker.Run(ctx, inv, cred)
	if err != nil {
		return nil, err
	}

	records, err := cliout.Normalize(result.Stdout, c.logger)
	if err != nil {
		return nil, outputError(inv, result, err)
	}

	return records, nil
}

// outputError adds the operation and, for empty output, whatever the CLI
// printed on stderr.
func outputError(inv Invocation, result *Result, err error) error {
	if errors.Is(err, cliout.ErrEmptyOutput) {
		if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
			return fmt.Errorf("ardrive: %s exited 0 but printed nothing on stdout (stderr: %s): %w",
				inv.Op, stderr, err)
		}

		return fmt.Errorf("ardrive: %s exited 0 but printed nothing on stdout; "+
			"check the drive id and rerun with --debug: %w", inv.Op, err)
	}

	return fmt.Errorf("ardrive: reading %s output: %w", inv.Op, err)
}
