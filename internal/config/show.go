package config

import (
	"fmt"
	"io"
)

// RenderEffective writes the resolved configuration as an annotated TOML-like
// summary to w. This powers "config show", giving users visibility into the
// effective values after all override layers have been applied.
func RenderEffective(r *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration (file: %s)\n\n", r.ConfigPath)

	ew.printf("[ardrive]\n")
	ew.printf("  binary        = %q\n", r.Ardrive.Binary)
	ew.printf("  vendored_path = %q\n", r.Ardrive.VendoredPath)
	ew.printf("  system_binary = %q\n", r.Ardrive.SystemBinary)
	ew.printf("  gateway       = %q\n", r.Ardrive.Gateway)
	ew.printf("  timeout       = %q\n", r.Ardrive.Timeout)
	ew.printf("  json_output   = %t\n\n", r.Ardrive.JSONOutput)

	ew.printf("[logging]\n")
	ew.printf("  log_level  = %q\n", r.Logging.LogLevel)
	ew.printf("  log_format = %q\n\n", r.Logging.LogFormat)

	ew.printf("[catalog]\n")
	ew.printf("  enabled = %t\n", r.Catalog.Enabled)
	ew.printf("  db_path = %q\n", r.CatalogPath)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
