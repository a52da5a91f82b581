package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/erddap-tools/erdgen/internal/generate"
	"github.com/erddap-tools/erdgen/internal/testutil"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	return testutil.WriteFile(t, dir, name, content)
}

const testManifestYAML = `
datasets:
  - name: OISST Mean
    url: https://example.org/thredds/dodsC/sst.mean.nc
`

const testXML = `<erddapDatasets>
<dataset type="EDDGridFromDap" datasetID="oisst_mean" active="true">
  <sourceUrl>https://old.example.org/erddap/griddap/oisst_mean</sourceUrl>
</dataset>
</erddapDatasets>
`

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "erdgen" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "erdgen")
	}

	// Check for expected subcommands (compare by Name(), not Use which includes args)
	expectedCmds := []string{"generate", "check", "status", "rewrite", "jsdump", "manifest"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}

	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestManifestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "datasets.yaml", testManifestYAML)

	if _, err := executeCommand(rootCmd, "manifest", "validate", path); err != nil {
		t.Fatalf("manifest validate: %v", err)
	}
}

func TestManifestValidateRejectsBadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "datasets.yaml", "datasets:\n  - name: no-url\n")

	if _, err := executeCommand(rootCmd, "manifest", "validate", path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestStatusCommand(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeFile(t, dir, "datasets.xml", testXML)
	urlsPath := writeFile(t, dir, "urls.txt", "https://example.org/erddap/griddap/oisst_mean\n")
	outPath := filepath.Join(dir, "out.xml")

	if _, err := executeCommand(rootCmd, "status", xmlPath, urlsPath, "-o", outPath); err != nil {
		t.Fatalf("status: %v", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `active="false"`) {
		t.Error("listed dataset not deactivated")
	}
}

func TestRewriteCommand(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeFile(t, dir, "datasets.xml", testXML)
	outPath := filepath.Join(dir, "out.xml")

	if _, err := executeCommand(rootCmd, "rewrite", xmlPath, "--host", "coastwatch.noaa.gov", "-o", outPath); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "https://coastwatch.noaa.gov/erddap/griddap/oisst_mean") {
		t.Errorf("host not rewritten:\n%s", out)
	}
}

func TestJsdumpCommand(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.json", `{"total": 1}`)
	outDir := filepath.Join(dir, "js")

	if _, err := executeCommand(rootCmd, "jsdump", catalogPath, "--var", "catalog", "--outdir", outDir); err != nil {
		t.Fatalf("jsdump: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "catalog.js")); err != nil {
		t.Errorf("script variant missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "catalog.mjs")); err != nil {
		t.Errorf("module variant missing: %v", err)
	}
}

func TestGenerateDryRun(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeFile(t, dir, "datasets.yaml", testManifestYAML)
	toolsDir := testutil.FakeToolsDir(t, generate.ScriptName, `echo "$@"`)

	_, err := executeCommand(rootCmd, "generate", manifestPath, "--dry-run", "--tools-dir", toolsDir)
	if err != nil {
		t.Fatalf("generate --dry-run: %v", err)
	}
}

func TestGenerateRejectsMissingTools(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeFile(t, dir, "datasets.yaml", testManifestYAML)

	_, err := executeCommand(rootCmd, "generate", manifestPath, "--dry-run", "--tools-dir", filepath.Join(dir, "absent"))
	if err == nil {
		t.Fatal("expected error for missing tools directory")
	}
}

func TestDerivedPath(t *testing.T) {
	if got := derivedPath("/tmp/datasets.xml", "_updated"); got != "/tmp/datasets_updated.xml" {
		t.Errorf("derivedPath = %q", got)
	}
	if got := derivedPath("noext", "_mod"); got != "noext_mod" {
		t.Errorf("derivedPath = %q", got)
	}
}
