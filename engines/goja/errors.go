package goja

import "errors"

var (
	ErrScriptEmpty       = errors.New("compiler script is empty")
	ErrEntryPointMissing = errors.New("compiler entry point is not a function")
	ErrResultNotString   = errors.New("compiler returned a non-string result")
	ErrInterrupted       = errors.New("compiler execution was interrupted")
	ErrStackOverflow     = errors.New("compiler exceeded the maximum call stack size")
	ErrRequestNil        = errors.New("compile request is nil")
)
