// Command ckbridge exercises the engine boundary from the command line:
// resolving context options, provisioning a surface for a target and
// building animations on a wasm engine build.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/ckbridge"
	"github.com/urfave/cli/v2"
)

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "enable debug logging to stderr",
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "ckbridge",
		Usage:   "engine boundary tools",
		Version: ckbridge.Version,
		Flags:   []cli.Flag{verboseFlag},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool(verboseFlag.Name) {
				ckbridge.SetLogger(slog.New(slog.NewTextHandler(ctx.App.ErrWriter, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
			return nil
		},
		Commands: []*cli.Command{
			optionsCommand,
			surfaceCommand,
			inspectCommand,
			animateCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
