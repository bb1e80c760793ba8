package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/hydessg/hyde/cmd/hyde/commands"
	ferrors "github.com/hydessg/hyde/internal/foundation/errors"
	"github.com/hydessg/hyde/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &commands.CLI{}
	global := &commands.Global{Stdout: os.Stdout, Stderr: os.Stderr}

	parser := kong.Parse(cli,
		kong.Name("hyde"),
		kong.Description("Front-matter-aware static site generator"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	parser.BindTo(ctx, (*context.Context)(nil))

	if err := parser.Run(global, cli); err != nil {
		stop()
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
