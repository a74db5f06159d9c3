package ardrive

import (
	"strings"
	"time"
)

// Privacy modes reported in drivePrivacy.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// Entity types reported in entityType.
const (
	EntityDrive  = "drive"
	EntityFolder = "folder"
	EntityFile   = "file"
)

// Drive is a logical storage container registered on the network.
// DriveID is the stable key; Name is a mutable, non-unique label.
// Empty strings and zero times mean the CLI did not report the field.
type Drive struct {
	DriveID      string
	Name         string
	Privacy      string
	RootFolderID string
	MetadataTxID string // registration transaction
	CreatedAt    time.Time
	AppName      string
	AppVersion   string
	EntityType   string
	Encryption   *DriveEncryption // nil for public drives
}

// DriveEncryption describes a private drive's cipher settings.
type DriveEncryption struct {
	Cipher   string
	CipherIV string
	AuthMode string
}

// FileEntry is one entity inside a drive, normally a file. Listings that
// include folders carry them with EntityType "folder".
type FileEntry struct {
	Name           string // NFC-normalized
	Size           *int64 // nil when the CLI omitted it
	DataTxID       string
	MetadataTxID   string
	ParentFolderID string
	FileID         string
	DriveID        string
	EntityType     string
	Path           string
	LastModified   time.Time
	ContentType    string
}

// Resolvable reports whether the entry has a transaction id that a
// retrieval URL can be built from.
func (f *FileEntry) Resolvable() bool {
	return f.DataTxID != "" || f.MetadataTxID != ""
}

// IsFile reports whether the entry is a file. Entries without an entity
// type are assumed to be files.
func (f *FileEntry) IsFile() bool {
	return f.EntityType == "" || f.EntityType == EntityFile
}

// DataURL returns the gateway URL of the file content, or "".
func (f *FileEntry) DataURL(gateway string) string {
	return TxURL(gateway, f.DataTxID)
}

// MetadataURL returns the gateway URL of the file's metadata, or "".
func (f *FileEntry) MetadataURL(gateway string) string {
	return TxURL(gateway, f.MetadataTxID)
}

// TxURL derives the retrieval URL for a transaction: <gateway>/<txID>.
// An empty txID yields "". No network call is made.
func TxURL(gateway, txID string) string {
	if txID == "" {
		return ""
	}

	return strings.TrimRight(gateway, "/") + "/" + txID
}
