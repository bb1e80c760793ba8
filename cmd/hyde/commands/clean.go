package commands

import (
	"context"
	"fmt"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Root   string `short:"r" help:"Site source directory" default:"." type:"path"`
	Output string `short:"o" help:"Output directory (overrides paths.output)"`
}

func (c *CleanCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig(c.Root)
	if err != nil {
		return err
	}
	if c.Output != "" {
		cfg.Paths.Output = c.Output
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if err := newBuildService(g).Clean(ctx, cfg); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.stdout(), "cleaned %s\n", cfg.OutputDir())
	return nil
}
