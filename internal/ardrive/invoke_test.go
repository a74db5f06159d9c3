package ardrive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/sugar-cli/internal/wallet"
	"github.com/tonimelisma/sugar-cli/testutil"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func walletFileArg(args []string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "--wallet-file" {
			return args[i+1]
		}
	}

	return ""
}

func TestRun_Success(t *testing.T) {
	work := t.TempDir()
	tmpDir := t.TempDir()
	argsFile := filepath.Join(work, "args")
	walletCopy := filepath.Join(work, "wallet-copy")
	bin := testutil.WriteFakeArdrive(t, work, testutil.RecordArgsArdrive(argsFile, walletCopy, `[{"driveId":"a"}]`))

	r := newTestRunner(t, bin, tmpDir)

	res, err := r.Run(context.Background(), Invocation{Op: OpListAllDrives}, testCredential())
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, `[{"driveId":"a"}]`, strings.TrimSpace(res.Stdout))
	assert.Equal(t, OriginExplicit, res.Binary.Origin)

	args := readLines(t, argsFile)
	assert.Equal(t, "list-all-drives", args[0])
	assert.Equal(t, "--json", args[len(args)-1])

	walletPath := walletFileArg(args)
	assert.Equal(t, tmpDir, filepath.Dir(walletPath))
	assert.True(t, strings.HasPrefix(filepath.Base(walletPath), "sugar-cli-wallet-"))
	assert.True(t, strings.HasSuffix(walletPath, ".tmp.json"))

	copied, err := os.ReadFile(walletCopy)
	require.NoError(t, err)
	assert.Equal(t, testWallet, string(copied))

	assert.Empty(t, tempEntries(t, tmpDir), "temporary wallet must be removed")
	assert.NotContains(t, strings.Join(res.Command, " "), "secret")
}

func TestRun_NonZeroExit(t *testing.T) {
	tmpDir := t.TempDir()
	stderr := "Error: drive d1 not found\n    at listDrive (cli.js:10)"
	bin := testutil.WriteFakeArdrive(t, t.TempDir(), testutil.EchoArdrive("partial", stderr, 3))

	r := newTestRunner(t, bin, tmpDir)

	_, err := r.Run(context.Background(), Invocation{Op: OpListDrive, DriveID: "d1"}, testCredential())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubprocess)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, stderr+"\n", exitErr.Stderr)
	assert.Contains(t, err.Error(), stderr)
	assert.Contains(t, exitErr.Command, "list-drive")
	assert.Contains(t, exitErr.Command, "d1")

	assert.Empty(t, tempEntries(t, tmpDir), "temporary wallet must be removed after failure")
}

func TestRun_StderrOnSuccessIsKept(t *testing.T) {
	bin := testutil.WriteFakeArdrive(t, t.TempDir(),
		testutil.EchoArdrive("[]", "(node:1) ExperimentalWarning: fetch", 0))

	res, err := newTestRunner(t, bin, t.TempDir()).Run(context.Background(),
		Invocation{Op: OpListAllDrives}, testCredential())
	require.NoError(t, err)
	assert.Contains(t, res.Stderr, "ExperimentalWarning")
}

func TestRun_ChildEnvironment(t *testing.T) {
	bin := testutil.WriteFakeArdrive(t, t.TempDir(), `echo "$NODE_ENV $NO_COLOR $KEEP_ME"`)

	r := newTestRunner(t, bin, t.TempDir())
	r.opts.Env = []string{"KEEP_ME=yes"}

	res, err := r.Run(context.Background(), Invocation{Op: OpListAllDrives}, testCredential())
	require.NoError(t, err)
	assert.Equal(t, "production 1 yes", strings.TrimSpace(res.Stdout))
}

func TestRun_UniqueTempPaths(t *testing.T) {
	work := t.TempDir()
	tmpDir := t.TempDir()
	argsA := filepath.Join(work, "args-a")
	argsB := filepath.Join(work, "args-b")

	binA := testutil.WriteFakeArdrive(t, t.TempDir(),
		"sleep 0.2\n"+testutil.RecordArgsArdrive(argsA, filepath.Join(work, "wa"), "[]"))
	binB := testutil.WriteFakeArdrive(t, t.TempDir(),
		"sleep 0.2\n"+testutil.RecordArgsArdrive(argsB, filepath.Join(work, "wb"), "[]"))

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i, bin := range []string{binA, binB} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = newTestRunner(t, bin, tmpDir).Run(context.Background(),
				Invocation{Op: OpListAllDrives}, testCredential())
		}()
	}

	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	pathA := walletFileArg(readLines(t, argsA))
	pathB := walletFileArg(readLines(t, argsB))
	assert.NotEmpty(t, pathA)
	assert.NotEqual(t, pathA, pathB)
	assert.Empty(t, tempEntries(t, tmpDir))
}

func TestRun_MissingDriveIDWritesNothing(t *testing.T) {
	work := t.TempDir()
	tmpDir := t.TempDir()
	argsFile := filepath.Join(work, "args")
	bin := testutil.WriteFakeArdrive(t, work, testutil.RecordArgsArdrive(argsFile, filepath.Join(work, "w"), "[]"))

	_, err := newTestRunner(t, bin, tmpDir).Run(context.Background(),
		Invocation{Op: OpListDriveFiles}, testCredential())
	require.Error(t, err)

	assert.Empty(t, tempEntries(t, tmpDir))
	assert.NoFileExists(t, argsFile)
}

func TestRun_EmptyCredential(t *testing.T) {
	bin := testutil.WriteFakeArdrive(t, t.TempDir(), "exit 0")

	_, err := newTestRunner(t, bin, t.TempDir()).Run(context.Background(),
		Invocation{Op: OpListAllDrives}, &wallet.Credential{Content: "  \n"})
	require.ErrorIs(t, err, wallet.ErrNoWallet)
}

func TestRun_BinaryNotFoundCleansUp(t *testing.T) {
	tmpDir := t.TempDir()

	r := NewRunner(RunnerOptions{TempDir: tmpDir, TempPrefix: "sugar-cli"}, testLogger(t))

	_, err := r.Run(context.Background(), Invocation{Op: OpListAllDrives}, testCredential())
	require.ErrorIs(t, err, ErrBinaryNotFound)
	assert.Empty(t, tempEntries(t, tmpDir))
}

func TestRun_Timeout(t *testing.T) {
	tmpDir := t.TempDir()
	bin := testutil.WriteFakeArdrive(t, t.TempDir(), "exec sleep 10")

	r := newTestRunner(t, bin, tmpDir)
	r.opts.Timeout = 200 * time.Millisecond

	start := time.Now()
	_, err := r.Run(context.Background(), Invocation{Op: OpListAllDrives}, testCredential())
	require.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "200ms")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Empty(t, tempEntries(t, tmpDir))
}

func TestRun_Canceled(t *testing.T) {
	bin := testutil.WriteFakeArdrive(t, t.TempDir(), "exec sleep 10")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := newTestRunner(t, bin, t.TempDir()).Run(ctx, Invocation{Op: OpListAllDrives}, testCredential())
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSubprocess)
}
