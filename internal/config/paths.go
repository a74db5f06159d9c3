package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Platform identifiers.
const (
	platformLinux  = "linux"
	platformDarwin = "darwin"
)

// Application directory name used across all platforms.
const appName = "sugar-cli"

// File names inside the config directory.
const (
	configFileName = "config.toml"
	walletFileName = "ardrive_wallet.json"
	catalogDBName  = "catalog.db"
)

// AppName returns the application directory name. The temporary wallet
// file prefix is derived from it.
func AppName() string {
	return appName
}

// DefaultConfigDir returns ~/.config/sugar-cli on every platform.
// XDG_CONFIG_HOME is not consulted: the wallet store path is fixed.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", appName)
}

// DefaultDataDir returns the platform-specific directory for application data
// (the listing catalog).
// On Linux, respects XDG_DATA_HOME (defaults to ~/.local/share/sugar-cli).
// On macOS, uses ~/Library/Application Support/sugar-cli.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		return linuxDataDir(home)
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, ".local", "share", appName)
	}
}

// linuxDataDir returns the XDG-compliant data directory for Linux.
func linuxDataDir(home string) string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	return filepath.Join(home, ".local", "share", appName)
}

// DefaultConfigPath returns the full path to the default config file.
// This is the fallback when neither SUGAR_CONFIG nor --config is given.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, configFileName)
}

// WalletStorePath returns the durable wallet location,
// ~/.config/sugar-cli/ardrive_wallet.json. Empty if the home directory
// cannot be determined.
func WalletStorePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, walletFileName)
}

// DefaultCatalogPath returns the default catalog database location.
func DefaultCatalogPath() string {
	dir := DefaultDataDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, catalogDBName)
}
