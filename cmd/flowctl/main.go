// Command flowctl is the offline-first workflow engine CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/cli"
	"github.com/flowctl/flowctl/pkg/config"
	"github.com/flowctl/flowctl/pkg/console"
)

// version is set by GoReleaser at build time, mirroring the teacher's
// build-time version variable.
var version = "dev"

func main() {
	cli.SetVersionInfo(version)

	cfg, err := config.Load(config.LoadOptions{Overrides: overridesFromArgs(os.Args[1:])})
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(apperr.ExitCodeFor(err))
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(apperr.ExitCodeFor(err))
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(app)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(apperr.ExitCodeFor(err))
	}
}

// overridesFromArgs picks out the handful of global flags that need to be
// known before pkg/config resolves anything (profile selection happens
// before the config file chain is even read), by scanning raw args rather
// than standing up a second cobra parse pass.
func overridesFromArgs(args []string) config.Overrides {
	overrides := config.Overrides{}
	for i, a := range args {
		switch {
		case a == "--profile" && i+1 < len(args):
			overrides["profile"] = args[i+1]
		case strings.HasPrefix(a, "--profile="):
			overrides["profile"] = strings.TrimPrefix(a, "--profile=")
		}
	}
	return overrides
}
