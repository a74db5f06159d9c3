package main

import (
	"github.com/spf13/cobra"

	"github.com/tonimelisma/sugar-cli/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		RunE:  runConfigShow,
	}
}

// configShowOutput is the JSON schema of config show.
type configShowOutput struct {
	ConfigPath  string               `json:"config_path"`
	Ardrive     config.ArdriveConfig `json:"ardrive"`
	Logging     config.LoggingConfig `json:"logging"`
	CatalogPath string               `json:"catalog_path,omitempty"`
	WalletStore string               `json:"wallet_store"`
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	if cc.Flags.JSON {
		return printJSON(cmd.OutOrStdout(), configShowOutput{
			ConfigPath:  cc.Cfg.ConfigPath,
			Ardrive:     cc.Cfg.Ardrive,
			Logging:     cc.Cfg.Logging,
			CatalogPath: cc.Cfg.CatalogPath,
			WalletStore: config.WalletStorePath(),
		})
	}

	return config.RenderEffective(cc.Cfg, cmd.OutOrStdout())
}
