package commands

import (
	"fmt"

	"github.com/hydessg/hyde/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Root  string `short:"r" help:"Site source directory" default:"." type:"path"`
	Force bool   `help:"Overwrite an existing hyde.yaml"`
}

func (i *InitCmd) Run(g *Global) error {
	path, err := config.Init(i.Root, i.Force)
	if err != nil {
		return err
	}
	g.logger().Info("Initialized site", "config", path)
	_, _ = fmt.Fprintf(g.stdout(), "initialized %s\n", path)
	return nil
}
