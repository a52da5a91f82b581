package generate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erddap-tools/erdgen/internal/dataset"
	"github.com/erddap-tools/erdgen/internal/errors"
	"github.com/erddap-tools/erdgen/internal/event"
	"github.com/erddap-tools/erdgen/internal/testutil"
)

// setupTools creates a tools directory holding a fake generator script that
// echoes its arguments.
func setupTools(t *testing.T) string {
	t.Helper()
	return testutil.FakeToolsDir(t, ScriptName, `echo "$@"`)
}

func testManifest(t *testing.T) *dataset.Manifest {
	t.Helper()
	m, err := dataset.ParseManifest([]byte(`
defaults:
  reload_minutes: 1440
datasets:
  - name: OISST Mean
    url: https://example.org/thredds/dodsC/sst.mean.nc
  - name: Buoy Obs
    url: https://example.org/thredds/tabledap/buoys
    type: tabledap
    reload_minutes: 60
`))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestValidateTools(t *testing.T) {
	toolsDir := setupTools(t)
	if err := ValidateTools(toolsDir); err != nil {
		t.Fatalf("ValidateTools: %v", err)
	}
}

func TestValidateToolsMissingDir(t *testing.T) {
	err := ValidateTools(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if !errors.Is(err, errors.ErrToolNotFound) || !errors.IsConfig(err) {
		t.Errorf("error %v should be a tool-not-found config error", err)
	}
}

func TestValidateToolsMissingScript(t *testing.T) {
	err := ValidateTools(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing script")
	}
	if !errors.Is(err, errors.ErrToolNotFound) {
		t.Errorf("error %v does not wrap ErrToolNotFound", err)
	}
}

func TestNewFailsFastOnBadTools(t *testing.T) {
	_, err := New(Config{ToolsDir: filepath.Join(t.TempDir(), "absent")}, nil, nil)
	if err == nil {
		t.Fatal("expected constructor to reject missing tools")
	}
}

func TestBuildJobs(t *testing.T) {
	toolsDir := setupTools(t)
	logsDir := t.TempDir()
	g, err := New(Config{ToolsDir: toolsDir, LogsDir: logsDir}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	jobs, skipped, err := g.BuildJobs(testManifest(t))
	if err != nil {
		t.Fatalf("BuildJobs: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("unexpected skips: %+v", skipped)
	}
	if len(jobs) != 2 {
		t.Fatalf("built %d jobs, want 2", len(jobs))
	}

	grid := jobs[0]
	if grid.Path != filepath.Join(toolsDir, ScriptName) {
		t.Errorf("job path = %q", grid.Path)
	}
	wantArgs := []string{"EDDGridFromDap", "https://example.org/thredds/dodsC/sst.mean.nc", "1440"}
	if len(grid.Args) != 3 || grid.Args[0] != wantArgs[0] || grid.Args[1] != wantArgs[1] || grid.Args[2] != wantArgs[2] {
		t.Errorf("griddap args = %v, want %v", grid.Args, wantArgs)
	}
	if grid.LogPath != filepath.Join(logsDir, "OISST_Mean.log") {
		t.Errorf("log path = %q", grid.LogPath)
	}

	table := jobs[1]
	if table.Args[0] != "EDDTableFromDapSequence" {
		t.Errorf("tabledap EDD type = %q", table.Args[0])
	}
	if table.Args[2] != "60" {
		t.Errorf("per-dataset reload not honored: %v", table.Args)
	}
}

func TestBuildJobsNoRunnableDatasets(t *testing.T) {
	g, err := New(Config{ToolsDir: setupTools(t)}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	m, err := dataset.ParseManifest([]byte(`
filter:
  exclude: ["*"]
datasets:
  - name: anything
    url: https://example.org/d
`))
	if err != nil {
		t.Fatal(err)
	}

	_, skipped, err := g.BuildJobs(m)
	if !errors.Is(err, errors.ErrNoDatasets) {
		t.Errorf("error %v does not wrap ErrNoDatasets", err)
	}
	if len(skipped) != 1 {
		t.Errorf("skipped %d datasets, want 1", len(skipped))
	}
}

func TestRunWritesPerDatasetLogs(t *testing.T) {
	toolsDir := setupTools(t)
	logsDir := filepath.Join(t.TempDir(), "logs")
	g, err := New(Config{ToolsDir: toolsDir, LogsDir: logsDir, MaxJobs: 2}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	summary, err := g.Run(context.Background(), testManifest(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 2 || summary.Launched != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.FailedCount() != 0 {
		t.Errorf("unexpected failures: %+v", summary.Failed)
	}

	data, err := os.ReadFile(filepath.Join(logsDir, "OISST_Mean.log"))
	if err != nil {
		t.Fatalf("dataset log missing: %v", err)
	}
	got := strings.TrimSpace(string(data))
	want := "EDDGridFromDap https://example.org/thredds/dodsC/sst.mean.nc 1440"
	if got != want {
		t.Errorf("dataset log = %q, want %q", got, want)
	}
}

func TestRunPublishesRunnerEvents(t *testing.T) {
	bus := event.NewBus()
	collector := testutil.Collect(bus)

	g, err := New(Config{ToolsDir: setupTools(t), LogsDir: t.TempDir()}, bus, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Run(context.Background(), testManifest(t)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	counts := make(map[string]int)
	for _, typ := range collector.Types() {
		counts[typ]++
	}
	if counts["job.started"] != 2 || counts["job.exited"] != 2 || counts["run.completed"] != 1 {
		t.Errorf("event counts = %v", counts)
	}
}

func TestRunDefaultsMaxJobs(t *testing.T) {
	g, err := New(Config{ToolsDir: setupTools(t)}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if g.cfg.MaxJobs != 4 {
		t.Errorf("default max jobs = %d, want 4", g.cfg.MaxJobs)
	}
}

func TestCommandLines(t *testing.T) {
	toolsDir := setupTools(t)
	g, err := New(Config{ToolsDir: toolsDir}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	lines, err := g.CommandLines(testManifest(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	want := filepath.Join(toolsDir, ScriptName) + " EDDGridFromDap https://example.org/thredds/dodsC/sst.mean.nc 1440"
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
}

func TestEmptyLogsDirDefaults(t *testing.T) {
	toolsDir := setupTools(t)
	gen, err := New(Config{ToolsDir: toolsDir}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	jobs, _, err := gen.BuildJobs(testManifest(t))
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(DefaultLogsDir, "OISST_Mean.log")
	if jobs[0].LogPath != want {
		t.Errorf("LogPath = %q, want %q", jobs[0].LogPath, want)
	}

	t.Chdir(t.TempDir())
	if _, err := gen.Run(context.Background(), testManifest(t)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(DefaultLogsDir); err != nil {
		t.Errorf("default logs directory was not created: %v", err)
	}
}
