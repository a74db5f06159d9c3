package ardrive

import (
	"log/slog"
	"os"
	"testing"

	"github.com/tonimelisma/sugar-cli/internal/wallet"
)

const testWallet = `{"kty":"RSA","n":"abc","e":"AQAB","d":"secret"}`

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testCredential() *wallet.Credential {
	return &wallet.Credential{Content: testWallet, Source: wallet.SourceEnvironment}
}

// newTestRunner returns a Runner whose only probe is the explicit path bin
// and whose temp files land in tmpDir.
func newTestRunner(t *testing.T, bin, tmpDir string) *Runner {
	t.Helper()

	return NewRunner(RunnerOptions{
		Probes:     []Probe{ExplicitProbe(bin)},
		TempDir:    tmpDir,
		TempPrefix: "sugar-cli",
		JSONOutput: true,
		Env:        []string{"PATH=" + os.Getenv("PATH")},
	}, testLogger(t))
}

// tempEntries lists files left in dir.
func tempEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}
