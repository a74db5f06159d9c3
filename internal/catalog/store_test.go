package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/sugar-cli/internal/ardrive"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "catalog.db"), testLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return fixed }

	return s
}

func int64Ptr(n int64) *int64 { return &n }

const (
	walletA = "fingerprint-a"
	walletB = "fingerprint-b"
)

func listingCount(t *testing.T, s *Store, scope string) int {
	t.Helper()

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count FROM listings WHERE scope = ?`, scope).Scan(&n))

	return n
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	s, err := Open(ctx, path, testLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.SaveDrives(ctx, walletA, []ardrive.Drive{{DriveID: "d1"}}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, testLogger(t))
	require.NoError(t, err)
	defer s.Close()

	drives, _, err := s.Drives(ctx, walletA)
	require.NoError(t, err)
	require.Len(t, drives, 1)
}

func TestDrives_NotCached(t *testing.T) {
	_, _, err := newTestStore(t).Drives(context.Background(), walletA)
	require.ErrorIs(t, err, ErrNotCached)
	assert.Contains(t, err.Error(), "--offline")
}

func TestSaveDrives_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Unix(1700000000, 500).UTC()
	require.NoError(t, s.SaveDrives(ctx, walletA, []ardrive.Drive{
		{DriveID: "d2", Name: "Zeta", Privacy: ardrive.PrivacyPublic, CreatedAt: created},
		{DriveID: "d1", Name: "Alpha", Privacy: ardrive.PrivacyPrivate,
			Encryption: &ardrive.DriveEncryption{Cipher: "AES256-GCM", CipherIV: "iv", AuthMode: "password"}},
	}))

	drives, listedAt, err := s.Drives(ctx, walletA)
	require.NoError(t, err)
	require.Len(t, drives, 2)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), listedAt)

	assert.Equal(t, "Alpha", drives[0].Name)
	require.NotNil(t, drives[0].Encryption)
	assert.Equal(t, "password", drives[0].Encryption.AuthMode)
	assert.True(t, drives[0].CreatedAt.IsZero())

	assert.Equal(t, "Zeta", drives[1].Name)
	assert.Nil(t, drives[1].Encryption)
	assert.Equal(t, created, drives[1].CreatedAt)
}

func TestSaveDrives_ReplacesListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDrives(ctx, walletA, []ardrive.Drive{
		{DriveID: "d1", Name: "Old"},
		{DriveID: "d2", Name: "Gone"},
	}))
	require.NoError(t, s.SaveDrives(ctx, walletA, []ardrive.Drive{{DriveID: "d1", Name: "New"}}))

	drives, _, err := s.Drives(ctx, walletA)
	require.NoError(t, err)
	require.Len(t, drives, 1)
	assert.Equal(t, "New", drives[0].Name)
	assert.Equal(t, 1, listingCount(t, s, scopeDrives(walletA)))
}

func TestSaveDrives_SeparatesWallets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDrives(ctx, walletA, []ardrive.Drive{{DriveID: "a-drive"}}))
	require.NoError(t, s.SaveDrives(ctx, walletB, []ardrive.Drive{{DriveID: "b-drive"}, {DriveID: "shared"}}))
	require.NoError(t, s.SaveDrives(ctx, walletA, []ardrive.Drive{{DriveID: "a-drive"}, {DriveID: "shared"}}))

	drives, _, err := s.Drives(ctx, walletA)
	require.NoError(t, err)
	require.Len(t, drives, 2)
	assert.Equal(t, "a-drive", drives[0].DriveID)
	assert.Equal(t, "shared", drives[1].DriveID)

	drives, _, err = s.Drives(ctx, walletB)
	require.NoError(t, err)
	require.Len(t, drives, 2)
	assert.Equal(t, "b-drive", drives[0].DriveID)

	_, _, err = s.Drives(ctx, "never-listed")
	require.ErrorIs(t, err, ErrNotCached)
}

func TestSaveDrives_DuplicateIDCountedOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDrives(ctx, walletA, []ardrive.Drive{
		{DriveID: "d1", Name: "First"},
		{DriveID: "d1", Name: "Second"},
	}))

	drives, _, err := s.Drives(ctx, walletA)
	require.NoError(t, err)
	require.Len(t, drives, 1)
	assert.Equal(t, "First", drives[0].Name)
	assert.Equal(t, 1, listingCount(t, s, scopeDrives(walletA)))
}

func TestSaveFiles_PreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	files := make([]ardrive.FileEntry, 12)
	for i := range files {
		files[i] = ardrive.FileEntry{Name: string(rune('l' - i)) + ".json", DataTxID: "T"}
	}

	files[3].Size = int64Ptr(42)
	files[4].LastModified = time.UnixMilli(1700000000123).UTC()

	require.NoError(t, s.SaveFiles(ctx, "d1", files))

	got, _, err := s.Files(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, got, len(files))

	for i := range files {
		assert.Equal(t, files[i].Name, got[i].Name, "position %d", i)
		assert.Equal(t, "d1", got[i].DriveID)
	}

	require.NotNil(t, got[3].Size)
	assert.Equal(t, int64(42), *got[3].Size)
	assert.Nil(t, got[0].Size)
	assert.Equal(t, files[4].LastModified, got[4].LastModified)
	assert.True(t, got[0].LastModified.IsZero())
}

func TestSaveFiles_ReplacesListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveFiles(ctx, "d1", []ardrive.FileEntry{{Name: "a"}, {Name: "b"}, {Name: "c"}}))
	require.NoError(t, s.SaveFiles(ctx, "d1", []ardrive.FileEntry{{Name: "z"}}))
	require.NoError(t, s.SaveFiles(ctx, "d2", []ardrive.FileEntry{{Name: "other"}}))

	got, _, err := s.Files(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "z", got[0].Name)
}

func TestFiles_EmptyListingIsCached(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.Files(ctx, "d1")
	require.ErrorIs(t, err, ErrNotCached)

	require.NoError(t, s.SaveFiles(ctx, "d1", nil))

	got, _, err := s.Files(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
