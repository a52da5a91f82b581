package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erddap-tools/erdgen/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "erdgen",
	Short: "ERDDAP dataset XML generation toolkit",
	Long: `Erdgen drives ERDDAP's GenerateDatasetsXml.sh over a YAML manifest of
THREDDS datasets with bounded parallelism, and bundles the surrounding
chores: URL availability checks, datasets.xml active-flag reconciliation,
sourceUrl host rewriting, and JSON catalog embedding.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/erdgen/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/erdgen")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ERDGEN")
	// Replace dots with underscores for nested keys in env vars
	// e.g., ERDGEN_RUNNER_MAX_JOBS for runner.max_jobs
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
