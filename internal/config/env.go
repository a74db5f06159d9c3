package config

import "os"

// Environment variable names.
const (
	EnvConfig  = "SUGAR_CONFIG"
	EnvWallet  = "ARDRIVE_WALLET"
	EnvBinary  = "ARDRIVE_BIN"
	EnvGateway = "ARDRIVE_GATEWAY"
)

// EnvOverrides holds values derived from environment variables.
// ARDRIVE_WALLET is not included: wallet content is read by the wallet
// resolver at the moment it is needed and never stored on a config value.
type EnvOverrides struct {
	ConfigPath string // SUGAR_CONFIG: override config file path
	Binary     string // ARDRIVE_BIN: explicit ardrive executable
	Gateway    string // ARDRIVE_GATEWAY: retrieval gateway base URL
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		Binary:     os.Getenv(EnvBinary),
		Gateway:    os.Getenv(EnvGateway),
	}
}
