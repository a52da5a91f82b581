// Package config defines the erdgen configuration, its defaults, and the
// viper wiring that merges config files, environment variables, and flags.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/erddap-tools/erdgen/internal/runner"
)

// Config represents the complete erdgen configuration
type Config struct {
	Runner  RunnerConfig  `mapstructure:"runner"`
	Tools   ToolsConfig   `mapstructure:"tools"`
	Check   CheckConfig   `mapstructure:"check"`
	Logging LoggingConfig `mapstructure:"logging"`
	TUI     TUIConfig     `mapstructure:"tui"`
}

// RunnerConfig controls the parallel job runner
type RunnerConfig struct {
	// MaxJobs is the maximum number of concurrent GenerateDatasetsXml.sh
	// processes (default: 4)
	MaxJobs int `mapstructure:"max_jobs"`
	// CollectResults records per-job outcomes in the run summary
	CollectResults bool `mapstructure:"collect_results"`
}

// ToolsConfig locates the ERDDAP installation and run outputs
type ToolsConfig struct {
	// Dir is the ERDDAP WEB-INF directory containing GenerateDatasetsXml.sh
	Dir string `mapstructure:"dir"`
	// LogsDir receives one log file per dataset (default: ./logs)
	LogsDir string `mapstructure:"logs_dir"`
}

// CheckConfig controls URL availability checks
type CheckConfig struct {
	// Retries is the number of attempts per URL (default: 3)
	Retries int `mapstructure:"retries"`
	// RetryDelaySeconds is the pause between attempts (default: 2)
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds"`
	// TimeoutSeconds bounds each request (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// Workers is the number of URLs probed concurrently (default: 4)
	Workers int `mapstructure:"workers"`
}

// LoggingConfig controls structured run logging
type LoggingConfig struct {
	// Enabled turns file logging on (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum level logged: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Dir is the directory for erdgen's own log file (empty = config dir)
	Dir string `mapstructure:"dir"`
	// MaxSizeMB rotates the log file beyond this size (0 = no rotation)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated files kept
	MaxBackups int `mapstructure:"max_backups"`
}

// TUIConfig controls the live progress display
type TUIConfig struct {
	// Enabled turns the progress view on when stdout is a terminal
	Enabled bool `mapstructure:"enabled"`
}

// RetryDelay returns the retry delay as a time.Duration
func (c *CheckConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// Timeout returns the request timeout as a time.Duration
func (c *CheckConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Runner: RunnerConfig{
			MaxJobs:        runner.DefaultMaxJobs,
			CollectResults: false,
		},
		Tools: ToolsConfig{
			Dir:     "",
			LogsDir: "logs",
		},
		Check: CheckConfig{
			Retries:           3,
			RetryDelaySeconds: 2,
			TimeoutSeconds:    10,
			Workers:           4,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		TUI: TUIConfig{
			Enabled: true,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Runner defaults
	viper.SetDefault("runner.max_jobs", defaults.Runner.MaxJobs)
	viper.SetDefault("runner.collect_results", defaults.Runner.CollectResults)

	// Tools defaults
	viper.SetDefault("tools.dir", defaults.Tools.Dir)
	viper.SetDefault("tools.logs_dir", defaults.Tools.LogsDir)

	// Check defaults
	viper.SetDefault("check.retries", defaults.Check.Retries)
	viper.SetDefault("check.retry_delay_seconds", defaults.Check.RetryDelaySeconds)
	viper.SetDefault("check.timeout_seconds", defaults.Check.TimeoutSeconds)
	viper.SetDefault("check.workers", defaults.Check.Workers)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// TUI defaults
	viper.SetDefault("tui.enabled", defaults.TUI.Enabled)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "erdgen")
	}
	// Fall back to ~/.config/erdgen
	home, err := os.UserHomeDir()
	if err != nil {
		return ".erdgen"
	}
	return filepath.Join(home, ".config", "erdgen")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
