package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// FakeArdriveName is the file name WriteFakeArdrive uses.
const FakeArdriveName = "ardrive"

// WriteFakeArdrive writes an executable /bin/sh script named "ardrive" into
// dir and returns its path. body runs with the invocation's arguments in
// "$@". Skips the test on platforms without /bin/sh.
func WriteFakeArdrive(t testing.TB, dir, body string) string {
	t.Helper()

	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("fake ardrive scripts need /bin/sh")
	}

	path := filepath.Join(dir, FakeArdriveName)
	script := "#!/bin/sh\n" + body
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}

	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake ardrive: %v", err)
	}

	return path
}

// EchoArdrive returns a script body that prints stdout and stderr and exits
// with code. Any "--version" call prints a version and exits 0.
func EchoArdrive(stdout, stderr string, code int) string {
	var b strings.Builder

	b.WriteString("if [ \"$1\" = \"--version\" ]; then echo 2.0.0; exit 0; fi\n")

	if stdout != "" {
		b.WriteString("cat <<'__STDOUT__'\n" + stdout + "\n__STDOUT__\n")
	}

	if stderr != "" {
		b.WriteString("cat >&2 <<'__STDERR__'\n" + stderr + "\n__STDERR__\n")
	}

	b.WriteString("exit " + strconv.Itoa(code) + "\n")

	return b.String()
}

// RecordArgsArdrive returns a script body that writes its arguments, one
// per line, to argsFile, copies the --wallet-file content to walletCopy,
// then behaves like EchoArdrive.
func RecordArgsArdrive(argsFile, walletCopy, stdout string) string {
	return "prev=''\n" +
		"for a in \"$@\"; do\n" +
		"  echo \"$a\" >> '" + argsFile + "'\n" +
		"  if [ \"$prev\" = \"--wallet-file\" ]; then cat \"$a\" > '" + walletCopy + "'; fi\n" +
		"  prev=\"$a\"\n" +
		"done\n" +
		EchoArdrive(stdout, "", 0)
}
