package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TempFile is a wallet copy on disk that lives for one ardrive invocation.
type TempFile struct {
	Path string
}

// WriteTemp writes content to a fresh file in dir named
// <prefix>-wallet-<uuid>.tmp.json. The file is created exclusively with 0600
// permissions, so concurrent invocations never share or clobber a path.
// On error nothing is left on disk.
func WriteTemp(dir, prefix, content string) (*TempFile, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-wallet-%s.tmp.json", prefix, uuid.NewString()))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerms)
	if err != nil {
		return nil, fmt.Errorf("wallet: creating temporary wallet file: %w", err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		_ = os.Remove(path)

		return nil, fmt.Errorf("wallet: writing temporary wallet file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)

		return nil, fmt.Errorf("wallet: closing temporary wallet file: %w", err)
	}

	return &TempFile{Path: path}, nil
}

// Remove deletes the temporary file. A file that is already gone is not an
// error.
func (t *TempFile) Remove() error {
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("wallet: removing temporary wallet file %s: %w", t.Path, err)
	}

	return nil
}
