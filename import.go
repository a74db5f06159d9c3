package main

import (
	"github.com/spf13/cobra"

	"github.com/tonimelisma/sugar-cli/internal/manifest"
)

// defaultCachePath is where import writes unless -o is given.
const defaultCachePath = "cache.json"

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build a deployment cache from a list of metadata URLs",
		Long: `Fetch each metadata URL listed in the input file (one per line, blank
lines and # comments ignored) and write a deployment cache. Item i takes its
name and image from the i-th document that was fetched successfully; URLs
answering with a non-2xx status are skipped with a warning.`,
		RunE: runImport,
	}

	cmd.Flags().StringP("input", "i", "", "file with one metadata URL per line")
	cmd.Flags().StringP("output", "o", defaultCachePath, "cache file to write")
	cmd.Flags().Int("parallel", manifest.DefaultParallel, "maximum concurrent downloads")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx, stop := cc.commandContext(cmd.Context())
	defer stop()

	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	parallel, _ := cmd.Flags().GetInt("parallel")

	urls, err := manifest.ReadURLList(input)
	if err != nil {
		return err
	}

	cc.Statusf("Fetching %d metadata documents...\n", len(urls))

	items, err := manifest.NewImporter(nil, parallel, cc.Logger).Import(ctx, urls)
	if err != nil {
		return err
	}

	if err := manifest.NewCache(items).Write(output); err != nil {
		return err
	}

	cc.Statusf("Wrote cache with %d items to %s\n", len(items), output)

	if skipped := len(urls) - len(items); skipped > 0 {
		cc.Statusf("Skipped %d URLs (see warnings above)\n", skipped)
	}

	return nil
}
