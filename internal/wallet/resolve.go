package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// EnvVar is the environment variable holding wallet JSON text directly.
const EnvVar = "ARDRIVE_WALLET"

// Resolver determines wallet content from, in strict order: an explicit
// path, the ARDRIVE_WALLET environment variable, and the durable store.
type Resolver struct {
	// StorePath is the durable wallet location. Empty disables the store
	// lookup (home directory unknown).
	StorePath string

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	Logger *slog.Logger
}

// NewResolver returns a Resolver reading the process environment.
func NewResolver(storePath string, logger *slog.Logger) *Resolver {
	return &Resolver{
		StorePath: storePath,
		Getenv:    os.Getenv,
		Logger:    logger,
	}
}

// Resolve returns the wallet to use. A non-empty explicit path always wins and
// fails fast when unreadable; the environment and store are not consulted.
func (r *Resolver) Resolve(explicit string) (*Credential, error) {
	if explicit != "" {
		data, err := os.ReadFile(explicit)
		if err != nil {
			return nil, fmt.Errorf("wallet: reading wallet file %s: %w", explicit, err)
		}

		r.Logger.Debug("using wallet from explicit path", slog.String("path", explicit))

		return &Credential{Content: string(data), Source: SourceExplicitPath, Path: explicit}, nil
	}

	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(EnvVar); strings.TrimSpace(v) != "" {
		r.Logger.Debug("using wallet from environment", slog.String("var", EnvVar))

		return &Credential{Content: v, Source: SourceEnvironment}, nil
	}

	if r.StorePath != "" {
		data, err := os.ReadFile(r.StorePath)
		switch {
		case err == nil:
			r.Logger.Debug("using stored wallet", slog.String("path", r.StorePath))

			return &Credential{Content: string(data), Source: SourceStoredFile, Path: r.StorePath}, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("wallet: reading stored wallet %s: %w", r.StorePath, err)
		}
	}

	return nil, ErrNoWallet
}
