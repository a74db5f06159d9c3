package ardrive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// versionProbeTimeout bounds the `--version` availability check.
const versionProbeTimeout = 15 * time.Second

// Origin says how a Binary was found.
type Origin string

// Binary origins.
const (
	OriginExplicit Origin = "explicit"
	OriginVendored Origin = "vendored"
	OriginSystem   Origin = "system"
)

// Binary is a located ardrive executable.
type Binary struct {
	Path    string
	Origin  Origin
	Version string // only set by the system probe
}

// Probe looks for the executable one way. It returns ok=false when this way
// found nothing, letting the next probe run, and an error when the lookup
// found something unusable.
type Probe func(ctx context.Context) (bin Binary, ok bool, err error)

// Locate runs probes in order and returns the first hit.
func Locate(ctx context.Context, probes []Probe, logger *slog.Logger) (Binary, error) {
	for _, probe := range probes {
		bin, ok, err := probe(ctx)
		if err != nil {
			return Binary{}, err
		}

		if ok {
			logger.Debug("located ardrive binary",
				slog.String("path", bin.Path),
				slog.String("origin", string(bin.Origin)),
			)

			return bin, nil
		}
	}

	return Binary{}, fmt.Errorf("%w: no vendored copy and nothing on PATH; %s", ErrBinaryNotFound, installHint)
}

// ExplicitProbe uses a configured path. A configured path that is missing
// or not executable is an error; the other probes are not tried.
func ExplicitProbe(path string) Probe {
	return func(context.Context) (Binary, bool, error) {
		if path == "" {
			return Binary{}, false, nil
		}

		if !isExecutable(path) {
			return Binary{}, false, fmt.Errorf("%w: configured binary %s is missing or not executable; %s",
				ErrBinaryNotFound, path, installHint)
		}

		return Binary{Path: path, Origin: OriginExplicit}, true, nil
	}
}

// VendoredProbe searches startDir and its ancestors for rel.
func VendoredProbe(startDir, rel string) Probe {
	return func(context.Context) (Binary, bool, error) {
		path, ok := FindVendored(startDir, rel)
		if !ok {
			return Binary{}, false, nil
		}

		return Binary{Path: path, Origin: OriginVendored}, true, nil
	}
}

// SystemProbe resolves name through PATH and verifies it answers --version.
func SystemProbe(name string) Probe {
	return func(ctx context.Context) (Binary, bool, error) {
		path, err := exec.LookPath(name)
		if err != nil {
			return Binary{}, false, nil
		}

		version, err := probeVersion(ctx, path)
		if err != nil {
			return Binary{}, false, fmt.Errorf("%w: %s is on PATH but '%s --version' failed: %v; %s",
				ErrBinaryNotFound, path, name, err, installHint)
		}

		return Binary{Path: path, Origin: OriginSystem, Version: version}, true, nil
	}
}

// FindVendored walks from startDir up to the filesystem root looking for an
// executable at <dir>/<rel>. It returns the first match.
func FindVendored(startDir, rel string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(dir, rel)
		if isExecutable(candidate) {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}

// isExecutable reports whether path is a regular file (after following
// symlinks, as npm's .bin entries are) with an execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

func probeVersion(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--version")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w (%s)", err, msg)
		}

		return "", err
	}

	return strings.TrimSpace(stdout.String()), nil
}
