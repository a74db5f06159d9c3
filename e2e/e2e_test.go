//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/sugar-cli/testutil"
)

var binaryPath string

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "sugar-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating temp dir: %v\n", err)
		os.Exit(1)
	}

	binaryPath = filepath.Join(tmpDir, "sugar")

	root := testutil.FindModuleRoot("..")
	testutil.LoadDotEnv(filepath.Join(root, ".env"))

	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "building binary: %v\n", err)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// cliEnv isolates HOME, the XDG data dir and TMPDIR under one temp root.
// No wallet or config overrides are inherited from the caller.
type cliEnv struct {
	home string
	tmp  string
	vars []string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	root := t.TempDir()
	e := &cliEnv{home: filepath.Join(root, "home"), tmp: filepath.Join(root, "tmp")}
	require.NoError(t, os.MkdirAll(e.home, 0o700))
	require.NoError(t, os.MkdirAll(e.tmp, 0o700))

	e.vars = []string{
		"HOME=" + e.home,
		"XDG_DATA_HOME=" + filepath.Join(e.home, "data"),
		"TMPDIR=" + e.tmp,
	}

	return e
}

// run executes the binary. extra entries override the base environment;
// PATH defaults to the caller's PATH.
func (e *cliEnv) run(t *testing.T, extra []string, args ...string) (string, string, error) {
	t.Helper()

	env := append([]string{}, e.vars...)

	hasPath := false
	for _, kv := range extra {
		if strings.HasPrefix(kv, "PATH=") {
			hasPath = true
		}
	}

	if !hasPath {
		env = append(env, "PATH="+os.Getenv("PATH"))
	}

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(env, extra...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) assertNoTempWallets(t *testing.T) {
	t.Helper()

	entries, err := os.ReadDir(e.tmp)
	require.NoError(t, err)

	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), "wallet", "leftover temporary wallet")
	}
}

func TestE2E_FakeArdriveRoundTrip(t *testing.T) {
	e := newCLIEnv(t)

	binDir := t.TempDir()
	listing := `{"drives":[{"driveId":"d-1","name":"Art"}]}`
	files := `[{"name":"0.json","dataTxId":"J0","entityType":"file"},` +
		`{"name":"0.png","dataTxId":"P0","entityType":"file"},` +
		`{"name":"1.json","dataTxId":"J1","entityType":"file"}]`

	script := "if [ \"$1\" = \"--version\" ]; then echo 2.0.0; exit 0; fi\n" +
		"if [ \"$1\" = \"list-all-drives\" ]; then printf '%s\\n' '" + listing + "'; exit 0; fi\n" +
		"printf '\\033[33mloading\\033[0m\\n%s\\n' '" + files + "'\n"
	testutil.WriteFakeArdrive(t, binDir, script)

	walletPath := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, os.WriteFile(walletPath, []byte(`{"kty":"RSA","n":"x","d":"y"}`), 0o600))

	t.Run("set_wallet", func(t *testing.T) {
		stdout, stderr, err := e.run(t, nil, "ardrive", "set-wallet", walletPath)
		require.NoError(t, err, stderr)
		assert.Contains(t, stdout, "export ARDRIVE_WALLET")
	})

	pathEnv := []string{"PATH=" + binDir + string(os.PathListSeparator) + os.Getenv("PATH")}

	t.Run("list_all_drives", func(t *testing.T) {
		stdout, stderr, err := e.run(t, pathEnv, "--json", "ardrive", "list-all-drives")
		require.NoError(t, err, stderr)

		var drives []map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &drives))
		require.Len(t, drives, 1)
		assert.Equal(t, "d-1", drives[0]["drive_id"])
	})

	t.Run("list_drive_files_cache", func(t *testing.T) {
		cachePath := filepath.Join(t.TempDir(), "cache.json")

		_, stderr, err := e.run(t, pathEnv,
			"ardrive", "list-drive-files", "-d", "d-1", "-e", "json", "--cache", cachePath)
		require.NoError(t, err, stderr)

		data, err := os.ReadFile(cachePath)
		require.NoError(t, err)

		s := string(data)
		assert.Contains(t, s, `"candyMachine": null`)
		assert.Contains(t, s, `"image_link": "https://arweave.net/J1"`)
		assert.NotContains(t, s, "P0")
		assert.Less(t, strings.Index(s, `"0":`), strings.Index(s, `"1":`))
	})

	t.Run("offline", func(t *testing.T) {
		stdout, stderr, err := e.run(t, nil, "ardrive", "list-drive-files", "-d", "d-1", "--offline")
		require.NoError(t, err, stderr)
		assert.Contains(t, stdout, "0.png")
	})

	e.assertNoTempWallets(t)
}

func TestE2E_MissingBinary(t *testing.T) {
	e := newCLIEnv(t)

	_, stderr, err := e.run(t, []string{"PATH=" + t.TempDir(), `ARDRIVE_WALLET={"kty":"RSA"}`},
		"ardrive", "list-all-drives")
	require.Error(t, err)
	assert.Contains(t, stderr, "npm install -g ardrive-cli")

	e.assertNoTempWallets(t)
}

// TestE2E_RealArdrive needs an installed ardrive CLI plus ARDRIVE_E2E_WALLET
// (wallet file path) and ARDRIVE_E2E_DRIVE (a drive id owned by it).
func TestE2E_RealArdrive(t *testing.T) {
	walletPath := os.Getenv("ARDRIVE_E2E_WALLET")
	driveID := os.Getenv("ARDRIVE_E2E_DRIVE")

	if walletPath == "" || driveID == "" {
		t.Skip("ARDRIVE_E2E_WALLET and ARDRIVE_E2E_DRIVE not set")
	}

	if _, err := exec.LookPath("ardrive"); err != nil {
		t.Skip("ardrive CLI not installed")
	}

	e := newCLIEnv(t)

	stdout, stderr, err := e.run(t, nil, "--json", "ardrive", "list-all-drives", "-w", walletPath)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, driveID)

	_, stderr, err = e.run(t, nil, "ardrive", "list-drive-files", "-d", driveID, "-w", walletPath,
		"--cache", filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err, stderr)

	e.assertNoTempWallets(t)
}
