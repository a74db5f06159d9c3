package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/sugar-cli/internal/ardrive"
	"github.com/tonimelisma/sugar-cli/internal/catalog"
	"github.com/tonimelisma/sugar-cli/internal/config"
	"github.com/tonimelisma/sugar-cli/internal/manifest"
	"github.com/tonimelisma/sugar-cli/internal/wallet"
)

// outputFilePerms applies to listing and cache files written with -o/--cache.
const outputFilePerms = 0o644

func newArdriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ardrive",
		Short: "Work with ArDrive through the ardrive CLI",
		Long: `List drives and files through the external ardrive CLI and manage the
wallet it signs with.

The wallet is taken from -w/--wallet, then the ARDRIVE_WALLET environment
variable (wallet JSON, not a path), then the wallet stored by
'sugar ardrive set-wallet'.`,
	}

	cmd.AddCommand(newSetWalletCmd())
	cmd.AddCommand(newShowWalletCmd())
	cmd.AddCommand(newListAllDrivesCmd())
	cmd.AddCommand(newListDriveCmd())
	cmd.AddCommand(newListDriveFilesCmd())

	return cmd
}

func newSetWalletCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set-wallet <file>",
		Aliases: []string{"export"},
		Short:   "Store a wallet file for later ardrive commands",
		Args:    cobra.ExactArgs(1),
		RunE:    runSetWallet,
	}
}

func newShowWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-wallet",
		Short: "Show which wallet would be used, with private key fields redacted",
		RunE:  runShowWallet,
	}

	addWalletFlag(cmd)
	cmd.Flags().Bool("reveal", false, "print private key fields instead of redacting them")

	return cmd
}

func newListAllDrivesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-all-drives",
		Short: "List every drive owned by the wallet",
		RunE:  runListAllDrives,
	}

	addWalletFlag(cmd)
	cmd.Flags().StringP("output", "o", "", "also write the drives as JSON to this file")
	cmd.Flags().Bool("offline", false, "show the wallet's last cached listing without running ardrive")

	return cmd
}

func newListDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list-drive",
		Aliases: []string{"list-drives"},
		Short:   "List the top-level entries of a drive",
		RunE:    runListDrive,
	}

	addWalletFlag(cmd)
	addDriveIDFlag(cmd)

	return cmd
}

func newListDriveFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-drive-files",
		Short: "List every file in a drive and optionally build a deployment cache",
		Long: `List every file in a drive, recursively, in the order ardrive reports
them. Folders are omitted.

With --cache, the listing (after --ext filtering) is written as a deployment
cache file: item i describes the i-th listed file, with links built from the
gateway (--gateway or [ardrive] gateway).`,
		RunE: runListDriveFiles,
	}

	addWalletFlag(cmd)
	addDriveIDFlag(cmd)
	cmd.Flags().StringP("output", "o", "", "also write the files as JSON to this file")
	cmd.Flags().StringP("ext", "e", "", "keep only files with this extension (e.g. json)")
	cmd.Flags().String("cache", "", "write a deployment cache file built from the listing")
	cmd.Flags().Bool("offline", false, "use the last cached listing without running ardrive")

	return cmd
}

func addWalletFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("wallet", "w", "", "wallet file (overrides ARDRIVE_WALLET and the stored wallet)")
}

func addDriveIDFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("drive-id", "d", "", "drive id (see 'sugar ardrive list-all-drives')")
	_ = cmd.MarkFlagRequired("drive-id")
}

func runSetWallet(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	dst := config.WalletStorePath()

	if err := wallet.Persist(args[0], dst); err != nil {
		return err
	}

	cc.Logger.Info("stored wallet", slog.String("path", dst))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wallet saved to %s\n", dst)
	fmt.Fprintln(out, "ardrive commands will use it when no --wallet or ARDRIVE_WALLET is given.")
	fmt.Fprintln(out, "To use this wallet from another tool, export it:")
	fmt.Fprintf(out, "  export ARDRIVE_WALLET=\"$(cat %s)\"\n", dst)

	return nil
}

// showWalletOutput is the JSON schema of show-wallet.
type showWalletOutput struct {
	Source string          `json:"source"`
	Path   string          `json:"path,omitempty"`
	Wallet json.RawMessage `json:"wallet"`
}

func runShowWallet(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	reveal, _ := cmd.Flags().GetBool("reveal")

	cred, err := resolveWallet(cmd, cc)
	if err != nil {
		return err
	}

	described, err := wallet.Describe(cred.Content, reveal)
	if err != nil {
		return err
	}

	if cc.Flags.JSON {
		return printJSON(cmd.OutOrStdout(), showWalletOutput{
			Source: cred.Source.String(),
			Path:   cred.Path,
			Wallet: json.RawMessage(described),
		})
	}

	out := cmd.OutOrStdout()
	if cred.Path != "" {
		fmt.Fprintf(out, "Source: %s (%s)\n", cred.Source, cred.Path)
	} else {
		fmt.Fprintf(out, "Source: %s\n", cred.Source)
	}

	fmt.Fprintln(out, described)

	return nil
}

func runListAllDrives(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx, stop := cc.commandContext(cmd.Context())
	defer stop()

	offline, _ := cmd.Flags().GetBool("offline")
	output, _ := cmd.Flags().GetString("output")

	// The wallet selects the cached listing too, so it is resolved offline.
	cred, err := resolveWallet(cmd, cc)
	if err != nil {
		return err
	}

	var drives []ardrive.Drive

	if offline {
		drives, err = cachedDrives(ctx, cc, cred.Fingerprint())
		if err != nil {
			return err
		}
	} else {
		drives, err = newArdriveClient(cc).ListAllDrives(ctx, cred)
		if err != nil {
			return err
		}

		withCatalog(ctx, cc, func(store *catalog.Store) error {
			return store.SaveDrives(ctx, cred.Fingerprint(), drives)
		})
	}

	if output != "" {
		if err := writeJSONFile(output, drivesJSON(drives)); err != nil {
			return err
		}

		cc.Statusf("Wrote %d drives to %s\n", len(drives), output)
	}

	if cc.Flags.JSON {
		return printJSON(cmd.OutOrStdout(), drivesJSON(drives))
	}

	printDrivesTable(cmd.OutOrStdout(), drives)

	return nil
}

func runListDrive(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx, stop := cc.commandContext(cmd.Context())
	defer stop()

	driveID, _ := cmd.Flags().GetString("drive-id")

	cred, err := resolveWallet(cmd, cc)
	if err != nil {
		return err
	}

	entries, err := newArdriveClient(cc).ListDrive(ctx, cred, driveID)
	if err != nil {
		return err
	}

	if cc.Flags.JSON {
		return printJSON(cmd.OutOrStdout(), filesJSON(entries))
	}

	printFilesTable(cmd.OutOrStdout(), entries)

	return nil
}

func runListDriveFiles(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx, stop := cc.commandContext(cmd.Context())
	defer stop()

	driveID, _ := cmd.Flags().GetString("drive-id")
	ext, _ := cmd.Flags().GetString("ext")
	output, _ := cmd.Flags().GetString("output")
	cachePath, _ := cmd.Flags().GetString("cache")
	offline, _ := cmd.Flags().GetBool("offline")

	var files []ardrive.FileEntry

	if offline {
		cached, err := cachedFiles(ctx, cc, driveID)
		if err != nil {
			return err
		}

		files = cached
	} else {
		cred, err := resolveWallet(cmd, cc)
		if err != nil {
			return err
		}

		files, err = newArdriveClient(cc).ListDriveFiles(ctx, cred, driveID)
		if err != nil {
			return err
		}

		withCatalog(ctx, cc, func(store *catalog.Store) error {
			return store.SaveFiles(ctx, driveID, files)
		})
	}

	files = manifest.FilterByExtension(files, ext)

	if output != "" {
		if err := writeJSONFile(output, filesJSON(files)); err != nil {
			return err
		}

		cc.Statusf("Wrote %d files to %s\n", len(files), output)
	}

	if cachePath != "" {
		items := manifest.Project(files, cc.Cfg.Ardrive.Gateway)
		if err := manifest.NewCache(items).Write(cachePath); err != nil {
			return err
		}

		cc.Statusf("Wrote cache with %d items to %s\n", len(items), cachePath)
	}

	if cc.Flags.JSON {
		return printJSON(cmd.OutOrStdout(), filesJSON(files))
	}

	printFilesTable(cmd.OutOrStdout(), files)

	return nil
}

// resolveWallet applies the -w, ARDRIVE_WALLET, stored-file precedence.
func resolveWallet(cmd *cobra.Command, cc *CLIContext) (*wallet.Credential, error) {
	explicit, _ := cmd.Flags().GetString("wallet")

	cred, err := wallet.NewResolver(config.WalletStorePath(), cc.Logger).Resolve(explicit)
	if err != nil {
		return nil, err
	}

	cc.Logger.Debug("resolved wallet", slog.Any("wallet", cred))

	return cred, nil
}

// newArdriveClient wires the runner from the resolved config. Probe order:
// configured binary, vendored copy above the working directory, PATH.
func newArdriveClient(cc *CLIContext) *ardrive.Client {
	a := cc.Cfg.Ardrive

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	runner := ardrive.NewRunner(ardrive.RunnerOptions{
		Probes: []ardrive.Probe{
			ardrive.ExplicitProbe(a.Binary),
			ardrive.VendoredProbe(cwd, a.VendoredPath),
			ardrive.SystemProbe(a.SystemBinary),
		},
		TempPrefix: config.AppName(),
		Timeout:    cc.Cfg.Timeout,
		JSONOutput: a.JSONOutput,
	}, cc.Logger)

	return ardrive.NewClient(runner, cc.Logger)
}

// withCatalog runs fn against the catalog when it is enabled. Failures are
// logged; the listing already succeeded.
func withCatalog(ctx context.Context, cc *CLIContext, fn func(*catalog.Store) error) {
	if cc.Cfg.CatalogPath == "" {
		return
	}

	store, err := catalog.Open(ctx, cc.Cfg.CatalogPath, cc.Logger)
	if err != nil {
		cc.Logger.Warn("catalog unavailable, listing not cached", slog.String("error", err.Error()))
		return
	}
	defer store.Close()

	if err := fn(store); err != nil {
		cc.Logger.Warn("failed to cache listing", slog.String("error", err.Error()))
	}
}

var errCatalogDisabled = errors.New("--offline needs the listing catalog; enable [catalog] in the config")

func openCatalogForRead(ctx context.Context, cc *CLIContext) (*catalog.Store, error) {
	if cc.Cfg.CatalogPath == "" {
		return nil, errCatalogDisabled
	}

	return catalog.Open(ctx, cc.Cfg.CatalogPath, cc.Logger)
}

func cachedDrives(ctx context.Context, cc *CLIContext, walletID string) ([]ardrive.Drive, error) {
	store, err := openCatalogForRead(ctx, cc)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	drives, listedAt, err := store.Drives(ctx, walletID)
	if err != nil {
		return nil, err
	}

	cc.Statusf("Showing drives cached %s\n", formatTime(listedAt))

	return drives, nil
}

func cachedFiles(ctx context.Context, cc *CLIContext, driveID string) ([]ardrive.FileEntry, error) {
	store, err := openCatalogForRead(ctx, cc)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	files, listedAt, err := store.Files(ctx, driveID)
	if err != nil {
		return nil, err
	}

	cc.Statusf("Using files of drive %s cached %s\n", driveID, formatTime(listedAt))

	return files, nil
}

// driveJSON is the JSON output schema for a drive.
type driveJSON struct {
	DriveID      string `json:"drive_id"`
	Name         string `json:"name"`
	Privacy      string `json:"privacy,omitempty"`
	RootFolderID string `json:"root_folder_id,omitempty"`
	MetadataTxID string `json:"metadata_tx_id,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	AppName      string `json:"app_name,omitempty"`
	AppVersion   string `json:"app_version,omitempty"`
	Cipher       string `json:"cipher,omitempty"`
	CipherIV     string `json:"cipher_iv,omitempty"`
	AuthMode     string `json:"auth_mode,omitempty"`
}

func drivesJSON(drives []ardrive.Drive) []driveJSON {
	out := make([]driveJSON, 0, len(drives))

	for i := range drives {
		d := &drives[i]
		j := driveJSON{
			DriveID:      d.DriveID,
			Name:         d.Name,
			Privacy:      d.Privacy,
			RootFolderID: d.RootFolderID,
			MetadataTxID: d.MetadataTxID,
			CreatedAt:    formatRFC3339(d.CreatedAt),
			AppName:      d.AppName,
			AppVersion:   d.AppVersion,
		}

		if d.Encryption != nil {
			j.Cipher = d.Encryption.Cipher
			j.CipherIV = d.Encryption.CipherIV
			j.AuthMode = d.Encryption.AuthMode
		}

		out = append(out, j)
	}

	return out
}

// fileJSON is the JSON output schema for a drive entry.
type fileJSON struct {
	Name           string `json:"name"`
	Size           *int64 `json:"size,omitempty"`
	EntityType     string `json:"entity_type,omitempty"`
	DataTxID       string `json:"data_tx_id,omitempty"`
	MetadataTxID   string `json:"metadata_tx_id,omitempty"`
	FileID         string `json:"file_id,omitempty"`
	ParentFolderID string `json:"parent_folder_id,omitempty"`
	Path           string `json:"path,omitempty"`
	ContentType    string `json:"content_type,omitempty"`
	LastModified   string `json:"last_modified,omitempty"`
}

func filesJSON(files []ardrive.FileEntry) []fileJSON {
	out := make([]fileJSON, 0, len(files))

	for i := range files {
		f := &files[i]
		out = append(out, fileJSON{
			Name:           f.Name,
			Size:           f.Size,
			EntityType:     f.EntityType,
			DataTxID:       f.DataTxID,
			MetadataTxID:   f.MetadataTxID,
			FileID:         f.FileID,
			ParentFolderID: f.ParentFolderID,
			Path:           f.Path,
			ContentType:    f.ContentType,
			LastModified:   formatRFC3339(f.LastModified),
		})
	}

	return out
}

func printDrivesTable(w io.Writer, drives []ardrive.Drive) {
	if len(drives) == 0 {
		fmt.Fprintln(w, "No drives found.")
		return
	}

	headers := []string{"DRIVE ID", "NAME", "PRIVACY", "CREATED"}
	rows := make([][]string, 0, len(drives))

	for i := range drives {
		d := &drives[i]
		rows = append(rows, []string{d.DriveID, orDash(d.Name), orDash(d.Privacy), formatTime(d.CreatedAt)})
	}

	printTable(w, headers, rows)
}

func printFilesTable(w io.Writer, files []ardrive.FileEntry) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files found.")
		return
	}

	headers := []string{"NAME", "SIZE", "DATA TX", "MODIFIED"}
	rows := make([][]string, 0, len(files))

	for i := range files {
		f := &files[i]

		name := orDash(f.Name)
		if !f.IsFile() {
			name += "/"
		}

		rows = append(rows, []string{name, formatOptionalSize(f.Size), orDash(f.DataTxID), formatTime(f.LastModified)})
	}

	printTable(w, headers, rows)
}

// writeJSONFile writes v as indented JSON to path, creating parent
// directories.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), outputFilePerms); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
