package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erddap-tools/erdgen/internal/jsdump"
)

var jsdumpCmd = &cobra.Command{
	Use:   "jsdump <catalog.json>",
	Short: "Embed a JSON catalog in JavaScript source",
	Long: `Convert a JSON catalog file into two JavaScript-embeddable variants:
a script-tag assignment (<name>.js) and an ES module export (<name>.mjs).`,
	Args: cobra.ExactArgs(1),
	RunE: runJsdump,
}

var (
	jsdumpVar    string
	jsdumpOutdir string
)

func init() {
	rootCmd.AddCommand(jsdumpCmd)

	jsdumpCmd.Flags().StringVar(&jsdumpVar, "var", jsdump.DefaultVarName, "JavaScript variable name")
	jsdumpCmd.Flags().StringVar(&jsdumpOutdir, "outdir", "", "output directory (default: alongside the catalog)")
}

func runJsdump(cmd *cobra.Command, args []string) error {
	paths, err := jsdump.WriteFiles(args[0], jsdumpVar, jsdumpOutdir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
