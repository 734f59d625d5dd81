// Package errz provides the error taxonomy shared by the compiler, the script engines, the
// minifier and the output writer.
//
// Three kinds of failure are distinguished so build tooling can decide what to do:
//   - ErrEnvironment: the deployment is broken (compiler script or externs unreadable). Fatal.
//   - ErrCompile: the input is invalid (CoffeeScript syntax error, minifier errors).
//   - ErrIO: a source could not be read or a target could not be written.
//
// Match a kind with errors.Is, inspect details with errors.As.
package errz

import (
	"errors"
	"fmt"
	"strings"
)

// Top-level error categories
var (
	ErrEnvironment = errors.New("environment error")
	ErrCompile     = errors.New("compile error")
	ErrIO          = errors.New("io error")
)

// EnvironmentError reports a non-recoverable defect of the execution environment.
type EnvironmentError struct {
	Message string
	Cause   error
}

// NewEnvironmentError creates an EnvironmentError.
func NewEnvironmentError(message string, cause error) *EnvironmentError {
	return &EnvironmentError{Message: message, Cause: cause}
}

func (e *EnvironmentError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", ErrEnvironment, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrEnvironment, e.Message, e.Cause)
}

func (e *EnvironmentError) Unwrap() error { return e.Cause }

func (e *EnvironmentError) Is(target error) bool { return target == ErrEnvironment }

// Diagnostic is a single message reported by a tool, tied to the source it refers to.
type Diagnostic struct {
	SourceName  string
	Description string
	Line        int
	Column      int
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", d.SourceName, d.Line, d.Column, d.Description)
	}
	return fmt.Sprintf("%s: %s", d.SourceName, d.Description)
}

// CompileError reports invalid input: either the embedded compiler rejected the
// CoffeeScript source, or the minifier reported errors on the generated JavaScript.
type CompileError struct {
	// Source is the display name of the compiled unit.
	Source  string
	Message string
	// Line and Column are 1-based; zero when the location is unknown.
	Line   int
	Column int
	// Diagnostics holds the individual errors when several were collected.
	Diagnostics []Diagnostic
	Cause       error
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString(ErrCompile.Error())
	b.WriteString(": ")
	if e.Source != "" {
		b.WriteString(e.Source)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

func (e *CompileError) Unwrap() error { return e.Cause }

func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// IOError reports a failed read or write of a source or target.
type IOError struct {
	Op    string
	Path  string
	Cause error
}

// NewIOError creates an IOError.
func NewIOError(op, path string, cause error) *IOError {
	return &IOError{Op: op, Path: path, Cause: cause}
}

func (e *IOError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s %s", ErrIO, e.Op, e.Path)
	}
	return fmt.Sprintf("%s: %s %s: %s", ErrIO, e.Op, e.Path, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

func (e *IOError) Is(target error) bool { return target == ErrIO }
