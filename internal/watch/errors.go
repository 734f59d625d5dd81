package watch

import "errors"

var (
	ErrCompilerNil = errors.New("compiler is nil")
	ErrNoJobs      = errors.New("no jobs to watch")
)
