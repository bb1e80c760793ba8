// Package commands implements the hyde command line interface.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/hydessg/hyde/internal/build"
	"github.com/hydessg/hyde/internal/config"
)

// Global is shared with every command's Run method.
type Global struct {
	Logger *slog.Logger
	// Stdout receives user-facing summaries.
	Stdout io.Writer
	// Stderr receives log output.
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: <root>/hyde.yaml)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Render the site into the output directory"`
	Clean CleanCmd `cmd:"" help:"Remove the output directory"`
	Init  InitCmd  `cmd:"" help:"Create hyde.yaml and the reserved directories"`

	global *Global
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	c.global = g
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	c.installLogger(level, config.LogFormatText)
	return nil
}

// applyLogConfig switches the handler to the level and format from the site
// configuration. --verbose keeps debug level.
func (c *CLI) applyLogConfig(cfg *config.Config) {
	level := cfg.Log.Level.Slog()
	if c.Verbose {
		level = slog.LevelDebug
	}
	c.installLogger(level, cfg.Log.Format)
}

func (c *CLI) installLogger(level slog.Level, format config.LogFormat) {
	var w io.Writer = os.Stderr
	if c.global != nil && c.global.Stderr != nil {
		w = c.global.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	if c.global != nil {
		c.global.Logger = logger
	}
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// loadConfig loads the site configuration and applies its log settings.
func (c *CLI) loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(root, c.Config)
	if err != nil {
		return nil, err
	}
	c.applyLogConfig(cfg)
	return cfg, nil
}

func newBuildService(g *Global) *build.DefaultBuildService {
	return build.NewBuildService().WithLogger(g.logger())
}
