package config

// Default values for configuration options. These are "layer 0" of the
// override chain and work without any config file.
const (
	defaultVendoredPath = "node_modules/.bin/ardrive"
	defaultSystemBinary = "ardrive"
	defaultGateway      = "https://arweave.net"
	defaultTimeout      = "5m"
	defaultLogLevel     = "warn"
	defaultLogFormat    = "auto"
)

// DefaultConfig returns a Config populated with all default values.
// It is the starting point for TOML decoding, so unset fields keep their
// defaults.
func DefaultConfig() *Config {
	return &Config{
		Ardrive: ArdriveConfig{
			VendoredPath: defaultVendoredPath,
			SystemBinary: defaultSystemBinary,
			Gateway:      defaultGateway,
			Timeout:      defaultTimeout,
			JSONOutput:   true,
		},
		Logging: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
		Catalog: CatalogConfig{
			Enabled: true,
		},
	}
}
