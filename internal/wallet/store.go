package wallet

import (
	"fmt"
	"os"
	"path/filepath"
)

// Persist copies the wallet file at src to the durable store at dst,
// creating parent directories as needed. The stored bytes are identical to
// the source. Any existing stored wallet is replaced wholesale.
func Persist(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("wallet: reading wallet file %s: %w", src, err)
	}

	return save(dst, data)
}

// save writes data to path atomically (write-to-temp + rename) with 0600
// permissions.
func save(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerms); err != nil {
		return fmt.Errorf("wallet: creating directory %s: %w", dir, err)
	}

	// Same directory guarantees same filesystem for rename(2).
	tmp, err := os.CreateTemp(dir, ".wallet-*.tmp")
	if err != nil {
		return fmt.Errorf("wallet: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("wallet: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("wallet: writing: %w", err)
	}

	// Flush before rename so a crash cannot leave a partial wallet behind.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("wallet: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("wallet: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("wallet: renaming: %w", err)
	}

	success = true

	return nil
}
