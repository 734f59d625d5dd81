// Package coffeescript compiles CoffeeScript to JavaScript by running the CoffeeScript
// compiler script in an embedded JavaScript engine.
//
// The package-level functions cover one-off compilations with the bundled compiler
// script. Use NewCompiler, or one of the From* constructors to load a different compiler
// script, when settings such as compression or the output encoding are needed.
package coffeescript

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/robbyt/go-coffeescript/compiler"
	"github.com/robbyt/go-coffeescript/loader"
	"github.com/robbyt/go-coffeescript/options"
)

// NewCompiler creates a Compiler that uses the bundled compiler script unless opts say
// otherwise. Logs go to slog's default handler unless a handler or logger is given.
func NewCompiler(opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	defaults := []compiler.FunctionalOption{
		compiler.WithLogHandler(slog.Default().Handler()),
	}
	return compiler.New(append(defaults, opts...)...)
}

// FromScriptFile creates a Compiler that evaluates the compiler script at path. Relative
// paths are resolved against the working directory.
func FromScriptFile(path string, opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve script path: %w", err)
	}
	l, err := loader.NewFromDisk(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to create script loader: %w", err)
	}
	return createCompiler(l, opts)
}

// FromScriptURL creates a Compiler that fetches the compiler script from an http(s) URL
// on first use.
func FromScriptURL(rawURL string, opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	l, err := loader.NewFromHTTP(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create script loader: %w", err)
	}
	return createCompiler(l, opts)
}

// FromScriptString creates a Compiler that evaluates the given compiler script.
func FromScriptString(content string, opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	l, err := loader.NewFromString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to create script loader: %w", err)
	}
	return createCompiler(l, opts)
}

// FromScriptReader creates a Compiler that evaluates the compiler script read from r. The
// reader is consumed immediately; name identifies the script in diagnostics.
func FromScriptReader(r io.Reader, name string, opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	l, err := loader.NewFromIoReader(r, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create script loader: %w", err)
	}
	return createCompiler(l, opts)
}

func createCompiler(l loader.Loader, opts []compiler.FunctionalOption) (*compiler.Compiler, error) {
	return NewCompiler(append([]compiler.FunctionalOption{compiler.WithScriptLoader(l)}, opts...)...)
}

// Compile compiles CoffeeScript text with the bundled compiler script.
func Compile(text string, flags ...options.Flag) (string, error) {
	c, err := NewCompiler(compiler.WithOptions(flags...))
	if err != nil {
		return "", err
	}
	return c.CompileString(text)
}

// CompileFile compiles the CoffeeScript file at path with the bundled compiler script.
func CompileFile(path string, flags ...options.Flag) (string, error) {
	c, err := NewCompiler(compiler.WithOptions(flags...))
	if err != nil {
		return "", err
	}
	return c.CompileFile(path)
}

// CompileFileTo compiles in and writes the JavaScript to out when out is missing, older
// than in, or force is set. Compress in flags minifies the output. The returned bool
// reports whether out was written.
func CompileFileTo(in, out string, force bool, flags ...options.Flag) (bool, error) {
	c, err := NewCompiler(compiler.WithOptions(flags...))
	if err != nil {
		return false, err
	}
	return c.CompileFileTo(in, out, force)
}
