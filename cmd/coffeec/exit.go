package main

import (
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/robbyt/go-coffeescript/errz"
)

const (
	exitCompile     = 1
	exitIO          = 2
	exitEnvironment = 3
)

// exitCode maps an error to the process exit status. When a batch failed for several
// reasons the most severe one wins.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errz.ErrEnvironment):
		return exitEnvironment
	case errors.Is(err, errz.ErrIO):
		return exitIO
	default:
		return exitCompile
	}
}

func exitError(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err, exitCode(err))
}
