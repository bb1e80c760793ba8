package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydessg/hyde/internal/config"
	ferrors "github.com/hydessg/hyde/internal/foundation/errors"
	"github.com/hydessg/hyde/internal/templates"
)

type cliHarness struct {
	cli    *CLI
	global *Global
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness() *cliHarness {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &cliHarness{
		cli:    &CLI{},
		global: &Global{Stdout: stdout, Stderr: stderr},
		stdout: stdout,
		stderr: stderr,
	}
}

// run parses args and executes the selected command.
func (h *cliHarness) run(t *testing.T, args ...string) error {
	t.Helper()
	parser, err := kong.New(h.cli,
		kong.Name("hyde"),
		kong.Vars{"version": "test"},
		kong.Bind(h.global),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
	)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	kctx.BindTo(context.Background(), (*context.Context)(nil))
	return kctx.Run(h.global, h.cli)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "_data", "site.yaml"), "title: Hyde\n")
	writeFile(t, filepath.Join(root, "_layouts", "default.html"), "<main>{{ content }}</main>")
	writeFile(t, filepath.Join(root, "index.html"), "---\n$layout: default\ntitle: Home\n---\n<h1>{{ page.title }} - {{ data.site.title }}</h1>")
	writeFile(t, filepath.Join(root, "style.css"), "body{}")
	return root
}

func TestInitCommand(t *testing.T) {
	root := filepath.Join(t.TempDir(), "site")
	h := newHarness()

	require.NoError(t, h.run(t, "init", "--root", root))
	assert.FileExists(t, filepath.Join(root, config.DefaultFilename))
	assert.DirExists(t, filepath.Join(root, config.DefaultDataDir))
	assert.DirExists(t, filepath.Join(root, config.DefaultLayoutsDir))
	assert.Contains(t, h.stdout.String(), "initialized")

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		err := newHarness().run(t, "init", "--root", root)
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	})

	t.Run("force overwrites", func(t *testing.T) {
		require.NoError(t, newHarness().run(t, "init", "--root", root, "--force"))
	})
}

func TestBuildCommand(t *testing.T) {
	root := newSite(t)
	h := newHarness()

	require.NoError(t, h.run(t, "build", "--root", root))

	out, err := os.ReadFile(filepath.Join(root, "_site", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<main><h1>Home - Hyde</h1></main>", string(out))
	assert.FileExists(t, filepath.Join(root, "_site", "style.css"))
	assert.Contains(t, h.stdout.String(), "rendered 1, copied 1")
}

func TestBuildCommandOutputOverride(t *testing.T) {
	root := newSite(t)
	out := filepath.Join(t.TempDir(), "public")

	require.NoError(t, newHarness().run(t, "build", "--root", root, "-o", out))
	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.NoDirExists(t, filepath.Join(root, "_site"))
}

func TestBuildCommandStrictFlag(t *testing.T) {
	root := newSite(t)
	writeFile(t, filepath.Join(root, "broken.html"), "---\ntitle: [unterminated\n---\nbody")

	require.NoError(t, newHarness().run(t, "build", "--root", root))

	err := newHarness().run(t, "build", "--root", root, "--strict")
	require.Error(t, err)
}

func TestBuildCommandDryRun(t *testing.T) {
	root := newSite(t)
	h := newHarness()

	require.NoError(t, h.run(t, "build", "--root", root, "--dry-run"))
	assert.NoDirExists(t, filepath.Join(root, "_site"))
	assert.Contains(t, h.stderr.String(), "Would write file")
}

func TestBuildCommandWritesMetricsAndReport(t *testing.T) {
	root := newSite(t)
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "hyde.prom")
	reportPath := filepath.Join(dir, "report.yaml")

	require.NoError(t, newHarness().run(t, "build", "--root", root,
		"--metrics-file", metricsPath, "--report", reportPath))

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "hyde_build_outcomes_total")
	assert.FileExists(t, reportPath)
}

func TestBuildCommandMissingConfigFile(t *testing.T) {
	root := newSite(t)
	err := newHarness().run(t, "build", "--root", root, "-c", filepath.Join(root, "nope.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestConfigLogSettingsApplied(t *testing.T) {
	root := newSite(t)
	writeFile(t, filepath.Join(root, config.DefaultFilename), "log:\n  level: debug\n  format: json\n")
	h := newHarness()

	require.NoError(t, h.run(t, "build", "--root", root))
	logs := h.stderr.String()
	assert.Contains(t, logs, `"level":"DEBUG"`)
	assert.Contains(t, logs, `"msg":`)
}

func TestCleanCommand(t *testing.T) {
	root := newSite(t)
	require.NoError(t, newHarness().run(t, "build", "--root", root))
	require.DirExists(t, filepath.Join(root, "_site"))

	h := newHarness()
	require.NoError(t, h.run(t, "clean", "--root", root))
	assert.NoDirExists(t, filepath.Join(root, "_site"))
	assert.Contains(t, h.stdout.String(), "cleaned")
}

func TestBuildCommandAppliesAutoescapeSetting(t *testing.T) {
	root := newSite(t)
	writeFile(t, filepath.Join(root, "raw.html"), "---\nsnippet: \"<b>x</b>\"\n---\n{{ page.snippet }}")
	writeFile(t, filepath.Join(root, config.DefaultFilename), "templates:\n  autoescape: true\n")
	t.Cleanup(func() { templates.SetAutoescape(false) })

	require.NoError(t, newHarness().run(t, "build", "--root", root))
	out, err := os.ReadFile(filepath.Join(root, "_site", "raw.html"))
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;x&lt;/b&gt;", string(out))
}

func TestBuildCommandRejectsOutputContainingRoot(t *testing.T) {
	root := newSite(t)
	err := newHarness().run(t, "build", "--root", root, "-o", "..", "--clean")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	assert.FileExists(t, filepath.Join(root, "index.html"))
}
