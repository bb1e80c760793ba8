package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/hydessg/hyde/internal/build"
	"github.com/hydessg/hyde/internal/config"
	"github.com/hydessg/hyde/internal/logfields"
	"github.com/hydessg/hyde/internal/metrics"
	"github.com/hydessg/hyde/internal/templates"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Root        string `short:"r" help:"Site source directory" default:"." type:"path"`
	Output      string `short:"o" help:"Output directory (overrides paths.output)"`
	Strict      bool   `help:"Fail on malformed front matter instead of rendering the raw text"`
	KeepGoing   bool   `name:"keep-going" short:"k" help:"Continue after a file fails and report all failures at the end"`
	DryRun      bool   `name:"dry-run" help:"Log writes instead of performing them"`
	Clean       bool   `help:"Remove the output directory before building"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path" type:"path"`
	Report      string `help:"Write a YAML build report to this path" type:"path"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig(b.Root)
	if err != nil {
		return err
	}
	if err := b.applyOverrides(cfg); err != nil {
		return err
	}
	templates.SetAutoescape(cfg.Templates.Autoescape)

	opts := build.BuildOptions{
		KeepGoing:  b.KeepGoing || cfg.Build.KeepGoing,
		Clean:      b.Clean || cfg.Build.Clean,
		DryRun:     b.DryRun,
		ReportPath: firstNonEmpty(b.Report, cfg.Build.Report),
	}

	svc := newBuildService(g)
	metricsFile := firstNonEmpty(b.MetricsFile, cfg.Build.MetricsFile)
	var prom *metrics.PrometheusRecorder
	if metricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		svc.WithRecorder(prom)
	}

	result, runErr := svc.Run(ctx, build.BuildRequest{Config: cfg, Options: opts})

	if prom != nil {
		if err := prom.WriteTextfile(metricsFile); err != nil {
			g.logger().Warn("Failed to write metrics", logfields.Path(metricsFile), logfields.Error(err))
		}
	}
	if result != nil {
		sum := result.Summary()
		_, _ = fmt.Fprintf(g.stdout(), "%s: rendered %d, copied %d, skipped %d, failed %d in %s -> %s\n",
			result.Status, sum.Rendered, sum.Copied, sum.Skipped, sum.Failed,
			result.Duration.Round(time.Millisecond), result.OutputPath)
	}
	return runErr
}

// applyOverrides lets command line flags take precedence over hyde.yaml.
func (b *BuildCmd) applyOverrides(cfg *config.Config) error {
	if b.Output != "" {
		cfg.Paths.Output = b.Output
	}
	if b.Strict {
		cfg.Templates.StrictFrontMatter = true
	}
	return cfg.Validate()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
