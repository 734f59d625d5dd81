package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/robbyt/go-coffeescript/internal/watch"
)

func newWatchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Build, then recompile jobs whenever their input changes",
		Flags: []cli.Flag{
			configFlag(),
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period before a changed input is recompiled",
				Value: watch.DefaultDebounce,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, c, err := loadBuild(cmd)
			if err != nil {
				return err
			}

			w, err := watch.New(c, cfg.CompileJobs(),
				watch.WithDebounce(cmd.Duration("debounce")),
				watch.WithConcurrency(cfg.Compiler.Concurrency),
				watch.WithLogHandler(logHandler(cmd)),
			)
			if err != nil {
				return err
			}
			return exitError(w.Run(ctx))
		},
	}
}
