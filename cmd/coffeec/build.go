package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/robbyt/go-coffeescript/compiler"
	"github.com/robbyt/go-coffeescript/internal/config"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the TOML build file",
		Value:   config.DefaultFileName,
	}
}

func newBuildCmd() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Compile every job of a build file",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Rewrite every target"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, c, err := loadBuild(cmd)
			if err != nil {
				return err
			}

			jobs := cfg.CompileJobs()
			if cmd.Bool("force") {
				for i := range jobs {
					jobs[i].Force = true
				}
			}

			result, err := c.CompileAll(ctx, jobs, cfg.Compiler.Concurrency)
			printSummary(cmd, result)
			return exitError(err)
		},
	}
}

// loadBuild reads the build file named by --config and creates its compiler.
func loadBuild(cmd *cli.Command) (*config.Config, *compiler.Compiler, error) {
	cfg, err := config.Load(afero.NewOsFs(), cmd.String("config"))
	if err != nil {
		return nil, nil, cli.Exit(err, exitCompile)
	}

	opts, err := cfg.CompilerOptions()
	if err != nil {
		return nil, nil, cli.Exit(fmt.Errorf("invalid compiler script: %w", err), exitEnvironment)
	}

	c, err := compiler.New(append(opts, compiler.WithLogHandler(logHandler(cmd)))...)
	if err != nil {
		return nil, nil, exitError(err)
	}
	return cfg, c, nil
}
