package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/erddap-tools/erdgen/internal/checker"
	"github.com/erddap-tools/erdgen/internal/config"
	"github.com/erddap-tools/erdgen/internal/dataset"
)

var checkCmd = &cobra.Command{
	Use:   "check [manifest|urls.json]",
	Short: "Probe dataset URLs for availability",
	Long: `Probe each dataset's metadata endpoint (the .das response for griddap,
.nccsvMetadata for tabledap) with retries and report which URLs answer with
a 2xx status.

The input is a YAML manifest or, when the file ends in .json, a JSON array
of {"url": ...} objects.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

var (
	checkRetries    int
	checkRetryDelay time.Duration
	checkTimeout    time.Duration
	checkWorkers    int
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().IntVar(&checkRetries, "retries", 0, "attempts per URL (default from config)")
	checkCmd.Flags().DurationVar(&checkRetryDelay, "retry-delay", 0, "pause between attempts")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 0, "per-request timeout")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "URLs probed concurrently")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	path := defaultManifest
	if len(args) > 0 {
		path = args[0]
	}

	targets, err := loadTargets(path)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	c := checker.New(checkerConfig(cfg), nil, logger)
	report := c.CheckTargets(cmd.Context(), targets)

	for _, r := range report.Results {
		status := "ok"
		if !r.Available {
			status = fmt.Sprintf("UNAVAILABLE after %d attempts (%v)", r.Attempts, r.Err)
		}
		fmt.Printf("%s\n  tested %s: %s\n", r.URL, r.Endpoint, status)
	}
	fmt.Printf("%d/%d URLs available\n", report.Available, len(report.Results))

	if report.Available < len(report.Results) {
		return fmt.Errorf("%d URLs unavailable", len(report.Results)-report.Available)
	}
	return nil
}

// loadTargets reads probe targets from a manifest or a JSON URL list.
func loadTargets(path string) ([]checker.Target, error) {
	if strings.HasSuffix(path, ".json") {
		urls, err := checker.LoadURLs(path)
		if err != nil {
			return nil, err
		}
		targets := make([]checker.Target, len(urls))
		for i, url := range urls {
			targets[i] = checker.Target{URL: url, Endpoint: checker.Endpoint(url)}
		}
		return targets, nil
	}

	m, err := dataset.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return checker.Targets(m.Datasets), nil
}

// checkerConfig maps the loaded config and flag overrides onto the checker.
func checkerConfig(cfg *config.Config) checker.Config {
	c := checker.Config{
		Retries:    cfg.Check.Retries,
		RetryDelay: cfg.Check.RetryDelay(),
		Timeout:    cfg.Check.Timeout(),
		Workers:    cfg.Check.Workers,
	}
	if checkRetries > 0 {
		c.Retries = checkRetries
	}
	if checkRetryDelay > 0 {
		c.RetryDelay = checkRetryDelay
	}
	if checkTimeout > 0 {
		c.Timeout = checkTimeout
	}
	if checkWorkers > 0 {
		c.Workers = checkWorkers
	}
	return c
}
