// Package config implements TOML configuration loading, validation, and
// path resolution for sugar-cli. Values are resolved through a four-layer
// override chain: defaults -> config file -> environment -> CLI flags.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Ardrive ArdriveConfig `toml:"ardrive" json:"ardrive"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
	Catalog CatalogConfig `toml:"catalog" json:"catalog"`
}

// ArdriveConfig controls how the external ardrive CLI is found and invoked.
type ArdriveConfig struct {
	// Binary is an explicit executable path. When set it wins over the
	// vendored and system lookups.
	Binary string `toml:"binary" json:"binary"`

	// VendoredPath is the project-relative location searched in the working
	// directory and each of its ancestors.
	VendoredPath string `toml:"vendored_path" json:"vendored_path"`

	// SystemBinary is the executable name resolved through PATH.
	SystemBinary string `toml:"system_binary" json:"system_binary"`

	Gateway    string `toml:"gateway" json:"gateway"`
	Timeout    string `toml:"timeout" json:"timeout"`
	JSONOutput bool   `toml:"json_output" json:"json_output"`
}

// LoggingConfig controls log output: level and format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level" json:"log_level"`
	LogFormat string `toml:"log_format" json:"log_format"`
}

// CatalogConfig controls the local listing catalog.
type CatalogConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	DBPath  string `toml:"db_path" json:"db_path"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Empty strings mean "not specified".
type CLIOverrides struct {
	ConfigPath string // --config
	Binary     string // --ardrive-bin
	Gateway    string // --gateway
}
