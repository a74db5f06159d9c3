package manifest

import (
	"strconv"
	"strings"

	"github.com/tonimelisma/sugar-cli/internal/ardrive"
)

// FilterByExtension keeps the files whose name ends in ext, compared
// case-insensitively. ext may be given with or without the leading dot; an
// empty ext keeps everything. Order is preserved.
func FilterByExtension(files []ardrive.FileEntry, ext string) []ardrive.FileEntry {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return files
	}

	suffix := "." + strings.ToLower(ext)

	kept := make([]ardrive.FileEntry, 0, len(files))
	for i := range files {
		if strings.HasSuffix(strings.ToLower(files[i].Name), suffix) {
			kept = append(kept, files[i])
		}
	}

	return kept
}

// Project folds a listing into cache items. Item i describes files[i]: its
// name (or "i" when the name is empty), the content and metadata links
// derived from the transaction ids, and OnChain false. Files without a
// transaction id get empty links.
func Project(files []ardrive.FileEntry, gateway string) Items {
	items := make(Items, len(files))

	for i := range files {
		f := &files[i]

		name := f.Name
		if name == "" {
			name = strconv.Itoa(i)
		}

		items[i] = Entry{
			Name:         name,
			ImageHash:    f.DataTxID,
			ImageLink:    f.DataURL(gateway),
			MetadataHash: f.MetadataTxID,
			MetadataLink: f.MetadataURL(gateway),
		}
	}

	return items
}
