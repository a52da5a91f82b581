package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erddap-tools/erdgen/internal/dataset"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect dataset manifests",
}

var manifestValidateCmd = &cobra.Command{
	Use:   "validate [manifest]",
	Short: "Parse and validate a dataset manifest",
	Long: `Load a manifest, run the same validation a generation run would, and
report the dataset count plus any names the filter would skip.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runManifestValidate,
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.AddCommand(manifestValidateCmd)
}

func runManifestValidate(cmd *cobra.Command, args []string) error {
	path := defaultManifest
	if len(args) > 0 {
		path = args[0]
	}

	m, err := dataset.LoadManifest(path)
	if err != nil {
		return err
	}

	kept, skipped := m.Runnable()
	fmt.Printf("Manifest OK: %d datasets, %d runnable\n", len(m.Datasets), len(kept))
	for _, s := range skipped {
		fmt.Printf("  skipped %s (%s)\n", s.Dataset.Name, s.Reason)
	}
	return nil
}
