package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erddap-tools/erdgen/internal/config"
	"github.com/erddap-tools/erdgen/internal/dataset"
	"github.com/erddap-tools/erdgen/internal/event"
	"github.com/erddap-tools/erdgen/internal/generate"
	"github.com/erddap-tools/erdgen/internal/logging"
	"github.com/erddap-tools/erdgen/internal/tui"
)

// defaultManifest is used when no manifest argument is given.
const defaultManifest = "datasets.yaml"

var generateCmd = &cobra.Command{
	Use:   "generate [manifest]",
	Short: "Run GenerateDatasetsXml.sh for every manifest dataset",
	Long: `Load a YAML dataset manifest and run ERDDAP's GenerateDatasetsXml.sh
once per dataset, at most runner.max_jobs at a time. Each dataset's output
is captured in its own log file under the logs directory.

Examples:
  # Run with the default manifest (datasets.yaml)
  erdgen generate

  # Run a specific manifest with 8 parallel jobs
  erdgen generate psl-aggregations.yaml --max-jobs 8

  # Print the commands without running anything
  erdgen generate --dry-run

  # Re-run automatically whenever the manifest changes
  erdgen generate --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

var (
	generateDryRun bool
	generateWatch  bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntP("max-jobs", "j", 0, "maximum concurrent jobs (default from config)")
	generateCmd.Flags().String("tools-dir", "", "ERDDAP WEB-INF directory containing GenerateDatasetsXml.sh")
	generateCmd.Flags().String("logs-dir", "", "directory for per-dataset log files")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print the commands without running them")
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "re-run when the manifest file changes")

	_ = viper.BindPFlag("runner.max_jobs", generateCmd.Flags().Lookup("max-jobs"))
	_ = viper.BindPFlag("tools.dir", generateCmd.Flags().Lookup("tools-dir"))
	_ = viper.BindPFlag("tools.logs_dir", generateCmd.Flags().Lookup("logs-dir"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	manifestPath := defaultManifest
	if len(args) > 0 {
		manifestPath = args[0]
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	if generateDryRun {
		return dryRun(cfg, manifestPath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if generateWatch {
		return watchAndGenerate(ctx, cfg, manifestPath, logger)
	}
	return generateOnce(ctx, cfg, manifestPath, logger)
}

// dryRun prints the command for every runnable dataset and exits.
func dryRun(cfg *config.Config, manifestPath string) error {
	m, err := dataset.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	gen, err := generate.New(generatorConfig(cfg), nil, nil)
	if err != nil {
		return err
	}
	lines, err := gen.CommandLines(m)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// generateOnce runs one full batch, with the live progress view when stdout
// is a terminal and plain lines otherwise.
func generateOnce(ctx context.Context, cfg *config.Config, manifestPath string, logger *logging.Logger) error {
	m, err := dataset.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	bus := event.NewBus()
	gen, err := generate.New(generatorConfig(cfg), bus, logger)
	if err != nil {
		return err
	}

	if cfg.TUI.Enabled && isTerminal() {
		return generateWithProgressView(ctx, gen, bus, m)
	}

	subs := subscribePlainProgress(bus)
	defer func() {
		for _, id := range subs {
			bus.Unsubscribe(id)
		}
	}()
	_, err = gen.Run(ctx, m)
	return err
}

// generateWithProgressView runs the batch in the background while the
// progress view owns the terminal.
func generateWithProgressView(ctx context.Context, gen *generate.Generator, bus *event.Bus, m *dataset.Manifest) error {
	kept, _ := m.Runnable()
	app := tui.New(bus, len(kept))

	runErr := make(chan error, 1)
	go func() {
		_, err := gen.Run(ctx, m)
		if err != nil {
			app.Abort(err)
		}
		runErr <- err
	}()

	if err := app.Run(); err != nil {
		return err
	}
	return <-runErr
}

// watchAndGenerate runs a batch now and again whenever the manifest file is
// written, until the context is canceled.
func watchAndGenerate(ctx context.Context, cfg *config.Config, manifestPath string, logger *logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors that rename a temp
	// file over the manifest would otherwise drop the watch.
	dir := filepath.Dir(manifestPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(manifestPath)

	run := func() {
		if err := generateOnce(ctx, cfg, manifestPath, logger); err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			logger.Error("watched run failed", "manifest", manifestPath, "error", err)
		}
	}

	run()
	fmt.Printf("Watching %s for changes (ctrl-c to stop)\n", manifestPath)

	// Editors fire several events per save; let them settle before re-running.
	const settle = 500 * time.Millisecond
	var pending *time.Timer
	runDue := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(settle, func() {
				select {
				case runDue <- struct{}{}:
				default:
				}
			})

		case <-runDue:
			fmt.Printf("Manifest changed, re-running\n")
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// generatorConfig maps the loaded config onto the generator's own config.
func generatorConfig(cfg *config.Config) generate.Config {
	return generate.Config{
		ToolsDir:       cfg.Tools.Dir,
		LogsDir:        cfg.Tools.LogsDir,
		MaxJobs:        cfg.Runner.MaxJobs,
		CollectResults: cfg.Runner.CollectResults,
	}
}
