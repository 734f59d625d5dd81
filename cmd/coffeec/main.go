// Command coffeec compiles CoffeeScript files to JavaScript.
//
//	coffeec compile [flags] FILE...
//	coffeec build [--config coffee.toml]
//	coffeec watch [--config coffee.toml]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/robbyt/go-coffeescript/internal/logging"
)

// Version is set during build using ldflags
var Version = "dev"

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "coffeec",
		Version: Version,
		Usage:   "Compile CoffeeScript to JavaScript",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "log-level",
				Usage:     "Log level (trace, debug, info, warn, error)",
				Value:     "info",
				Validator: logging.ValidateLevel,
			},
			&cli.StringFlag{
				Name:      "log-format",
				Usage:     "Log format (text, json)",
				Value:     "text",
				Validator: logging.ValidateFormat,
			},
		},
		Commands: []*cli.Command{
			newCompileCmd(),
			newBuildCmd(),
			newWatchCmd(),
			newVersionCmd(),
		},
		// exit codes are applied by main
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := 1
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		os.Exit(code)
	}
}
