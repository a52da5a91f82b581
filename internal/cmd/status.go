package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erddap-tools/erdgen/internal/xmledit"
)

var statusCmd = &cobra.Command{
	Use:   "status <datasets.xml> <urls.txt>",
	Short: "Reconcile active flags in datasets.xml against a URL list",
	Long: `Flip active flags in an ERDDAP datasets.xml so it agrees with a list of
problem source URLs (one per line): active datasets named by the list are
deactivated, inactive datasets not named by it are reactivated. Everything
else in the file, including formatting, is left untouched.

By default the result is written next to the input as <name>_updated.xml.`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

var (
	statusOutput  string
	statusInPlace bool
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "", "output file path")
	statusCmd.Flags().BoolVar(&statusInPlace, "in-place", false, "overwrite the input file")
}

func runStatus(cmd *cobra.Command, args []string) error {
	xmlPath, urlsPath := args[0], args[1]

	outPath := statusOutput
	if statusInPlace {
		outPath = xmlPath
	}
	if outPath == "" {
		outPath = derivedPath(xmlPath, "_updated")
	}

	report, err := xmledit.ReconcileFile(xmlPath, urlsPath, outPath)
	if err != nil {
		return err
	}

	for _, id := range report.DeactivatedIDs {
		fmt.Printf("Deactivated dataset: %s\n", id)
	}
	for _, id := range report.ActivatedIDs {
		fmt.Printf("Activated dataset: %s\n", id)
	}
	fmt.Printf("Processing complete:\n")
	fmt.Printf("- %d datasets were activated\n", report.Activated)
	fmt.Printf("- %d datasets were deactivated\n", report.Deactivated)
	fmt.Printf("Updated XML saved to %s\n", outPath)
	return nil
}

// derivedPath appends a suffix to a file name before its extension.
func derivedPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
