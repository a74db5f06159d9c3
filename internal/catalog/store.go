// Package catalog keeps the most recent ardrive listings in a local SQLite
// database so they can be shown or projected again without running the CLI
// (--offline). The catalog is a cache: losing it loses nothing that a fresh
// listing cannot rebuild.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register the "sqlite" driver

	"github.com/tonimelisma/sugar-cli/internal/ardrive"
)

// ErrNotCached is returned when no listing has been saved for a scope yet.
var ErrNotCached = errors.New("catalog: no cached listing")

func scopeDrives(wallet string) string {
	return "drives:" + wallet
}

func scopeFiles(driveID string) string {
	return "files:" + driveID
}

const (
	sqlDeleteDrives = `DELETE FROM drives WHERE wallet = ?`

	sqlInsertDrive = `INSERT INTO drives
		(wallet, drive_id, name, privacy, root_folder_id, metadata_tx_id, created_at,
		 app_name, app_version, cipher, cipher_iv, auth_mode, listed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(wallet, drive_id) DO NOTHING`

	sqlSelectDrives = `SELECT drive_id, name, privacy, root_folder_id, metadata_tx_id,
		created_at, app_name, app_version, cipher, cipher_iv, auth_mode
		FROM drives WHERE wallet = ? ORDER BY name, drive_id`

	sqlDeleteFiles = `DELETE FROM files WHERE drive_id = ?`

	sqlInsertFile = `INSERT INTO files
		(drive_id, position, name, size, data_tx_id, metadata_tx_id, parent_folder_id,
		 file_id, entity_type, path, last_modified, content_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqlSelectFiles = `SELECT name, size, data_tx_id, metadata_tx_id, parent_folder_id,
		file_id, entity_type, path, last_modified, content_type
		FROM files WHERE drive_id = ? ORDER BY position`

	sqlUpsertListing = `INSERT INTO listings (scope, listed_at, count) VALUES (?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
		 listed_at = excluded.listed_at,
		 count = excluded.count`

	sqlSelectListing = `SELECT listed_at FROM listings WHERE scope = ?`
)

// Store is the listing catalog. It is safe for use by one process; writes
// are serialized through a single connection.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	nowFunc func() time.Time
}

// Open opens (creating if needed) the catalog at path and applies
// migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("catalog: creating directory for %s: %w", path, err)
	}

	// DSN parameters ensure pragmas apply to every connection from the pool.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"+
			"&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening database %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("catalog opened", slog.String("db_path", path))

	return &Store{db: db, logger: logger, nowFunc: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("catalog: closing database: %w", err)
	}

	return nil
}

// SaveDrives replaces the cached drive listing of wallet, a fingerprint
// that identifies the wallet without containing it, and records the
// listing time.
func (s *Store) SaveDrives(ctx context.Context, wallet string, drives []ardrive.Drive) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sqlDeleteDrives, wallet); err != nil {
		return fmt.Errorf("catalog: clearing drives: %w", err)
	}

	now := s.nowFunc().UnixNano()
	saved := 0

	// A drive id repeated within one listing keeps its first occurrence.
	for i := range drives {
		d := &drives[i]

		var cipher, cipherIV, authMode sql.NullString
		if d.Encryption != nil {
			cipher = sql.NullString{String: d.Encryption.Cipher, Valid: true}
			cipherIV = sql.NullString{String: d.Encryption.CipherIV, Valid: true}
			authMode = sql.NullString{String: d.Encryption.AuthMode, Valid: true}
		}

		res, err := tx.ExecContext(ctx, sqlInsertDrive,
			wallet, d.DriveID, d.Name, d.Privacy, d.RootFolderID, d.MetadataTxID, nullTime(d.CreatedAt),
			d.AppName, d.AppVersion, cipher, cipherIV, authMode, now,
		)
		if err != nil {
			return fmt.Errorf("catalog: saving drive %s: %w", d.DriveID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("catalog: saving drive %s: %w", d.DriveID, err)
		}

		saved += int(n)
	}

	if _, err := tx.ExecContext(ctx, sqlUpsertListing, scopeDrives(wallet), now, saved); err != nil {
		return fmt.Errorf("catalog: recording drive listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: committing drives: %w", err)
	}

	s.logger.Debug("catalog saved drives", slog.Int("count", saved))

	return nil
}

// SaveFiles replaces the cached listing of driveID with files, keeping
// their order.
func (s *Store) SaveFiles(ctx context.Context, driveID string, files []ardrive.FileEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sqlDeleteFiles, driveID); err != nil {
		return fmt.Errorf("catalog: clearing files of drive %s: %w", driveID, err)
	}

	stmt, err := tx.PrepareContext(ctx, sqlInsertFile)
	if err != nil {
		return fmt.Errorf("catalog: preparing file insert: %w", err)
	}
	defer stmt.Close()

	for i := range files {
		f := &files[i]

		var size sql.NullInt64
		if f.Size != nil {
			size = sql.NullInt64{Int64: *f.Size, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			driveID, i, f.Name, size, f.DataTxID, f.MetadataTxID, f.ParentFolderID,
			f.FileID, f.EntityType, f.Path, nullTime(f.LastModified), f.ContentType,
		); err != nil {
			return fmt.Errorf("catalog: saving file %d of drive %s: %w", i, driveID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, sqlUpsertListing, scopeFiles(driveID), s.nowFunc().UnixNano(), len(files)); err != nil {
		return fmt.Errorf("catalog: recording file listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: committing files: %w", err)
	}

	s.logger.Debug("catalog saved files",
		slog.String("drive_id", driveID),
		slog.Int("count", len(files)),
	)

	return nil
}

// Drives returns the latest drive listing saved for wallet, ordered by name,
// and when it was listed. ErrNotCached if that wallet's drives were never
// saved.
func (s *Store) Drives(ctx context.Context, wallet string) ([]ardrive.Drive, time.Time, error) {
	listedAt, err := s.listedAt(ctx, scopeDrives(wallet))
	if err != nil {
		return nil, time.Time{}, err
	}

	rows, err := s.db.QueryContext(ctx, sqlSelectDrives, wallet)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("catalog: loading drives: %w", err)
	}
	defer rows.Close()

	var drives []ardrive.Drive

	for rows.Next() {
		var (
			d                          ardrive.Drive
			createdAt                  sql.NullInt64
			cipher, cipherIV, authMode sql.NullString
		)

		if err := rows.Scan(&d.DriveID, &d.Name, &d.Privacy, &d.RootFolderID, &d.MetadataTxID,
			&createdAt, &d.AppName, &d.AppVersion, &cipher, &cipherIV, &authMode); err != nil {
			return nil, time.Time{}, fmt.Errorf("catalog: scanning drive row: %w", err)
		}

		d.CreatedAt = fromNullTime(createdAt)

		if cipher.Valid {
			d.Encryption = &ardrive.DriveEncryption{
				Cipher:   cipher.String,
				CipherIV: cipherIV.String,
				AuthMode: authMode.String,
			}
		}

		drives = append(drives, d)
	}

	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("catalog: iterating drive rows: %w", err)
	}

	return drives, listedAt, nil
}

// Files returns the cached listing of driveID in its original order, and
// when it was listed. ErrNotCached if the drive was never listed.
func (s *Store) Files(ctx context.Context, driveID string) ([]ardrive.FileEntry, time.Time, error) {
	listedAt, err := s.listedAt(ctx, scopeFiles(driveID))
	if err != nil {
		return nil, time.Time{}, err
	}

	rows, err := s.db.QueryContext(ctx, sqlSelectFiles, driveID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("catalog: loading files of drive %s: %w", driveID, err)
	}
	defer rows.Close()

	var files []ardrive.FileEntry

	for rows.Next() {
		var (
			f            ardrive.FileEntry
			size         sql.NullInt64
			lastModified sql.NullInt64
		)

		if err := rows.Scan(&f.Name, &size, &f.DataTxID, &f.MetadataTxID, &f.ParentFolderID,
			&f.FileID, &f.EntityType, &f.Path, &lastModified, &f.ContentType); err != nil {
			return nil, time.Time{}, fmt.Errorf("catalog: scanning file row: %w", err)
		}

		if size.Valid {
			n := size.Int64
			f.Size = &n
		}

		f.LastModified = fromNullTime(lastModified)
		f.DriveID = driveID

		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("catalog: iterating file rows: %w", err)
	}

	return files, listedAt, nil
}

func (s *Store) listedAt(ctx context.Context, scope string) (time.Time, error) {
	var nanos int64

	err := s.db.QueryRowContext(ctx, sqlSelectListing, scope).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w for %s: run the listing once without --offline", ErrNotCached, scope)
	}

	if err != nil {
		return time.Time{}, fmt.Errorf("catalog: reading listing time for %s: %w", scope, err)
	}

	return time.Unix(0, nanos).UTC(), nil
}

// nullTime stores zero times as NULL.
func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNullTime(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}

	return time.Unix(0, v.Int64).UTC()
}
