package main

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/robbyt/go-coffeescript/internal/logging"
)

// logHandler builds the handler selected by the root --log-level and --log-format flags.
func logHandler(cmd *cli.Command) slog.Handler {
	return logging.SetupHandler(cmd.String("log-format"), cmd.String("log-level"), cmd.Root().ErrWriter)
}
