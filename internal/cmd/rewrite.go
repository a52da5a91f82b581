package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erddap-tools/erdgen/internal/xmledit"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file.xml>",
	Short: "Rewrite sourceUrl hosts in datasets.xml",
	Long: `Replace the scheme and host of every sourceUrl carrying an /erddap path
with a new host, preserving the path and the file's formatting. URLs
without an /erddap path are left untouched.

By default the result is written next to the input as <name>_modified.xml.`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

var (
	rewriteHost   string
	rewriteOutput string
)

func init() {
	rootCmd.AddCommand(rewriteCmd)

	rewriteCmd.Flags().StringVar(&rewriteHost, "host", "", "replacement host, optionally with scheme (required)")
	rewriteCmd.Flags().StringVarP(&rewriteOutput, "output", "o", "", "output file path")
	_ = rewriteCmd.MarkFlagRequired("host")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	xmlPath := args[0]

	outPath := rewriteOutput
	if outPath == "" {
		outPath = derivedPath(xmlPath, "_modified")
	}

	count, err := xmledit.RewriteHostFile(xmlPath, rewriteHost, outPath)
	if err != nil {
		return err
	}

	fmt.Printf("Rewrote %d sourceUrl entries\n", count)
	fmt.Printf("Modified file saved to %s\n", outPath)
	return nil
}
