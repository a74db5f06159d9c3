package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Resolved is the effective configuration after all override layers have
// been applied, with string durations parsed and derived paths filled in.
type Resolved struct {
	Config

	// ConfigPath is the file the values were read from, which may not exist.
	ConfigPath string

	// Timeout bounds each ardrive invocation. Zero means no limit.
	Timeout time.Duration

	// CatalogPath is the catalog database location (empty when disabled).
	CatalogPath string
}

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal, with "did you mean?" suggestions.
func Load(path string, logger *slog.Logger) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger.Debug("loaded config file", slog.String("path", path))

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with default values.
func LoadOrDefault(path string, logger *slog.Logger) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("config file not found, using defaults", slog.String("path", path))

		return DefaultConfig(), nil
	}

	return Load(path, logger)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) (*Resolved, error) {
	// 1. Config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	// 2. Config file (defaults if absent)
	cfg, err := LoadOrDefault(cfgPath, logger)
	if err != nil {
		return nil, err
	}

	// 3. Environment
	if env.Binary != "" {
		cfg.Ardrive.Binary = env.Binary
	}

	if env.Gateway != "" {
		cfg.Ardrive.Gateway = env.Gateway
	}

	// 4. CLI flags
	if cli.Binary != "" {
		cfg.Ardrive.Binary = cli.Binary
	}

	if cli.Gateway != "" {
		cfg.Ardrive.Gateway = cli.Gateway
	}

	// 5. Validate the merged result; overrides bypass file validation.
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	timeout, err := time.ParseDuration(cfg.Ardrive.Timeout)
	if err != nil {
		return nil, fmt.Errorf("config: ardrive.timeout: %w", err)
	}

	resolved := &Resolved{
		Config:     *cfg,
		ConfigPath: cfgPath,
		Timeout:    timeout,
	}

	if cfg.Catalog.Enabled {
		resolved.CatalogPath = cfg.Catalog.DBPath
		if resolved.CatalogPath == "" {
			resolved.CatalogPath = DefaultCatalogPath()
		}
	}

	return resolved, nil
}
