package ardrive

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"path/filepath"
	"time"

	"golang.org/x/text/unicode/norm"
)

// driveRecord mirrors a drive entity in ardrive CLI JSON output.
// Unexported: callers see Drive via toDrive().
type driveRecord struct {
	DriveID       string   `json:"driveId"`
	Name          string   `json:"name"`
	DrivePrivacy  string   `json:"drivePrivacy"`
	RootFolderID  string   `json:"rootFolderId"`
	TxID          string   `json:"txId"`
	MetadataTxID  string   `json:"metadataTxId"`
	UnixTime      *float64 `json:"unixTime"`
	AppName       string   `json:"appName"`
	AppVersion    string   `json:"appVersion"`
	EntityType    string   `json:"entityType"`
	Cipher        string   `json:"cipher"`
	CipherIV      string   `json:"cipherIV"`
	DriveAuthMode string   `json:"driveAuthMode"`
}

// fileRecord mirrors a file or folder entity in list-drive output.
type fileRecord struct {
	Name             string   `json:"name"`
	Size             *float64 `json:"size"`
	DataTxID         string   `json:"dataTxId"`
	TxID             string   `json:"txId"`
	MetadataTxID     string   `json:"metadataTxId"`
	ParentFolderID   string   `json:"parentFolderId"`
	FileID           string   `json:"fileId"`
	FolderID         string   `json:"folderId"`
	EntityID         string   `json:"entityId"`
	DriveID          string   `json:"driveId"`
	EntityType       string   `json:"entityType"`
	Path             string   `json:"path"`
	LastModifiedDate *float64 `json:"lastModifiedDate"`
	DataContentType  string   `json:"dataContentType"`
}

// toDrive normalizes a drive record. Encryption is set only when the record
// carries cipher information.
func (r *driveRecord) toDrive() Drive {
	d := Drive{
		DriveID:      r.DriveID,
		Name:         norm.NFC.String(r.Name),
		Privacy:      r.DrivePrivacy,
		RootFolderID: r.RootFolderID,
		MetadataTxID: firstNonEmpty(r.MetadataTxID, r.TxID),
		AppName:      r.AppName,
		AppVersion:   r.AppVersion,
		EntityType:   r.EntityType,
	}

	if r.UnixTime != nil {
		d.CreatedAt = unixSeconds(*r.UnixTime)
	}

	if r.Cipher != "" || r.CipherIV != "" || r.DriveAuthMode != "" {
		d.Encryption = &DriveEncryption{
			Cipher:   r.Cipher,
			CipherIV: r.CipherIV,
			AuthMode: r.DriveAuthMode,
		}
	}

	return d
}

// toFileEntry normalizes a file record. Names are NFC-normalized so that
// extension filtering and manifest names match what users type.
func (r *fileRecord) toFileEntry() FileEntry {
	f := FileEntry{
		Name:           norm.NFC.String(r.Name),
		DataTxID:       r.DataTxID,
		MetadataTxID:   firstNonEmpty(r.MetadataTxID, r.TxID),
		ParentFolderID: r.ParentFolderID,
		FileID:         firstNonEmpty(r.FileID, r.FolderID, r.EntityID),
		DriveID:        r.DriveID,
		EntityType:     r.EntityType,
		Path:           r.Path,
	}

	if r.Size != nil {
		size := int64(math.Round(*r.Size))
		f.Size = &size
	}

	if r.LastModifiedDate != nil {
		f.LastModified = time.UnixMilli(int64(*r.LastModifiedDate)).UTC()
	}

	if f.IsFile() {
		f.ContentType = r.DataContentType
		if f.ContentType == "" {
			f.ContentType = inferContentType(f.Name)
		}
	}

	return f
}

// DecodeDrives decodes every record as a Drive. A record that is not an
// object, has a mistyped field, or lacks driveId fails the whole batch.
func DecodeDrives(records []json.RawMessage) ([]Drive, error) {
	drives := make([]Drive, 0, len(records))

	for i, raw := range records {
		var rec driveRecord
		if err := decodeObject(raw, &rec); err != nil {
			return nil, &DecodeError{Index: i, Entity: "drive", Err: err}
		}

		if rec.DriveID == "" {
			return nil, &DecodeError{Index: i, Entity: "drive", Err: errors.New("missing driveId")}
		}

		drives = append(drives, rec.toDrive())
	}

	return drives, nil
}

// DecodeFiles decodes every record as a FileEntry, preserving order.
func DecodeFiles(records []json.RawMessage) ([]FileEntry, error) {
	files := make([]FileEntry, 0, len(records))

	for i, raw := range records {
		var rec fileRecord
		if err := decodeObject(raw, &rec); err != nil {
			return nil, &DecodeError{Index: i, Entity: "file", Err: err}
		}

		files = append(files, rec.toFileEntry())
	}

	return files, nil
}

func decodeObject(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("record is not a JSON object")
	}

	return json.Unmarshal(trimmed, v)
}

// inferContentType guesses a MIME type from the file extension, or returns
// "" when the extension is unknown.
func inferContentType(name string) string {
	return mime.TypeByExtension(filepath.Ext(name))
}

// unixSeconds converts a possibly fractional seconds timestamp.
func unixSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)

	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}
