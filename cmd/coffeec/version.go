package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robbyt/go-coffeescript/coffeejs"
	"github.com/robbyt/go-coffeescript/internal/helpers"
)

func newVersionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			fmt.Fprintf(w, "coffeec version %s\n", cmd.Root().Version)

			script, err := coffeejs.Script()
			if err != nil {
				fmt.Fprintf(w, "compiler script: not bundled (%v)\n", err)
				return nil
			}
			fmt.Fprintf(w, "compiler script: %s (sha256 %s)\n", coffeejs.ScriptName, helpers.ShortChecksum(script, 8))
			return nil
		},
	}
}
