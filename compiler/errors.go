package compiler

import "errors"

var (
	ErrReaderNil = errors.New("source reader is nil")
	ErrSourceNil = errors.New("source is nil")
	ErrNoJobs    = errors.New("no jobs to compile")
)
