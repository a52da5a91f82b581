// Package generate turns a validated dataset manifest into a batch of
// GenerateDatasetsXml.sh invocations and runs them with bounded parallelism.
package generate

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erddap-tools/erdgen/internal/dataset"
	"github.com/erddap-tools/erdgen/internal/errors"
	"github.com/erddap-tools/erdgen/internal/event"
	"github.com/erddap-tools/erdgen/internal/logging"
	"github.com/erddap-tools/erdgen/internal/runner"
)

// ScriptName is the ERDDAP tool invoked once per dataset.
const ScriptName = "GenerateDatasetsXml.sh"

// DefaultLogsDir receives per-dataset logs when Config.LogsDir is unset.
// Matches the config package's tools.logs_dir default.
const DefaultLogsDir = "logs"

// Config controls one generation batch.
type Config struct {
	// ToolsDir is the ERDDAP WEB-INF directory containing ScriptName.
	ToolsDir string

	// LogsDir receives one combined stdout/stderr log file per dataset.
	// Created if it does not exist; defaults to DefaultLogsDir.
	LogsDir string

	// MaxJobs is the concurrency limit passed to the runner.
	MaxJobs int

	// CollectResults asks the runner for per-job results in the summary.
	CollectResults bool
}

// Generator runs GenerateDatasetsXml.sh over every runnable manifest dataset.
type Generator struct {
	cfg    Config
	bus    *event.Bus
	logger *logging.Logger
}

// New creates a Generator. The tools directory is validated up front so a
// misconfigured run fails before any job is launched.
func New(cfg Config, bus *event.Bus, logger *logging.Logger) (*Generator, error) {
	if cfg.MaxJobs == 0 {
		cfg.MaxJobs = runner.DefaultMaxJobs
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = DefaultLogsDir
	}
	if err := ValidateTools(cfg.ToolsDir); err != nil {
		return nil, err
	}
	if bus == nil {
		bus = event.NewBus()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Generator{cfg: cfg, bus: bus, logger: logger}, nil
}

// ValidateTools verifies that the tools directory exists and contains the
// generator script.
func ValidateTools(toolsDir string) error {
	if toolsDir == "" {
		return errors.NewConfigError("tools directory not set", errors.ErrToolNotFound)
	}
	info, err := os.Stat(toolsDir)
	if err != nil || !info.IsDir() {
		return errors.NewConfigError("tools directory does not exist", errors.ErrToolNotFound).WithPath(toolsDir)
	}

	script := filepath.Join(toolsDir, ScriptName)
	scriptInfo, err := os.Stat(script)
	if err != nil || scriptInfo.IsDir() {
		return errors.NewConfigError(ScriptName+" not found in tools directory", errors.ErrToolNotFound).WithPath(script)
	}
	return nil
}

// eddType maps a dataset type to the GenerateDatasetsXml EDD type argument.
func eddType(t dataset.Type) string {
	if t == dataset.TypeTabledap {
		return "EDDTableFromDapSequence"
	}
	return "EDDGridFromDap"
}

// BuildJobs converts the runnable manifest datasets into runner jobs, in
// manifest order. Each job gets a log file named after the dataset under the
// logs directory.
func (g *Generator) BuildJobs(m *dataset.Manifest) ([]runner.Job, []dataset.Skipped, error) {
	kept, skipped := m.Runnable()
	if len(kept) == 0 {
		return nil, skipped, errors.NewConfigError("manifest has no runnable datasets", errors.ErrNoDatasets)
	}

	script := filepath.Join(g.cfg.ToolsDir, ScriptName)
	jobs := make([]runner.Job, len(kept))
	for i, d := range kept {
		jobs[i] = runner.Job{
			Name: d.Name,
			Path: script,
			Args: []string{
				eddType(d.EffectiveType()),
				d.URL,
				strconv.Itoa(d.EffectiveReload(m.Defaults.ReloadMinutes)),
			},
			Dir:     g.cfg.ToolsDir,
			LogPath: filepath.Join(g.cfg.LogsDir, dataset.SafeName(d.Name)+".log"),
		}
	}
	return jobs, skipped, nil
}

// Run executes the whole batch and returns the runner's summary. Skipped
// datasets are logged but never treated as failures.
func (g *Generator) Run(ctx context.Context, m *dataset.Manifest) (*runner.Summary, error) {
	jobs, skipped, err := g.BuildJobs(m)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		g.logger.Info("dataset skipped", "dataset", s.Dataset.Name, "reason", s.Reason)
	}

	if err := os.MkdirAll(g.cfg.LogsDir, 0o755); err != nil {
		return nil, errors.NewConfigError("failed to create logs directory", err).WithPath(g.cfg.LogsDir)
	}

	run, err := runner.New(runner.Config{
		MaxJobs:        g.cfg.MaxJobs,
		CollectResults: g.cfg.CollectResults,
	}, g.bus, g.logger)
	if err != nil {
		return nil, err
	}

	g.logger.Info("generation batch starting",
		"datasets", len(jobs), "skipped", len(skipped), "max_jobs", g.cfg.MaxJobs)
	return run.Run(ctx, jobs)
}

// CommandLines renders the batch as printable command lines without running
// anything. Used by dry runs.
func (g *Generator) CommandLines(m *dataset.Manifest) ([]string, error) {
	jobs, _, err := g.BuildJobs(m)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(jobs))
	for i, job := range jobs {
		line := job.Path
		for _, arg := range job.Args {
			line += " " + arg
		}
		lines[i] = line
	}
	return lines, nil
}
