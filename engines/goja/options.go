package goja

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/robbyt/go-coffeescript/coffeejs"
	"github.com/robbyt/go-coffeescript/internal/helpers"
	"github.com/robbyt/go-coffeescript/loader"
)

// DefaultMaxCallStackSize bounds the call depth of the compiler script. Deeper recursion
// fails the compilation with ErrStackOverflow instead of growing memory without limit.
const DefaultMaxCallStackSize = 10000

// FunctionalOption is a function that configures an Engine instance
type FunctionalOption func(*Engine) error

// WithLoader sets where the compiler script is read from. When not set, the script bundled
// by the coffeejs package is used.
func WithLoader(l loader.Loader) FunctionalOption {
	return func(e *Engine) error {
		if l == nil {
			return fmt.Errorf("loader cannot be nil")
		}
		e.loader = l
		return nil
	}
}

// WithScriptName sets the name the compiler script is reported under in diagnostics.
func WithScriptName(name string) FunctionalOption {
	return func(e *Engine) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("script name cannot be empty")
		}
		e.scriptName = name
		return nil
	}
}

// WithEntryPoint sets the expression that resolves to the compile function once the
// compiler script has been evaluated, e.g. "CoffeeScript.compile".
func WithEntryPoint(expr string) FunctionalOption {
	return func(e *Engine) error {
		if strings.TrimSpace(expr) == "" {
			return fmt.Errorf("entry point cannot be empty")
		}
		e.entryPoint = expr
		return nil
	}
}

// WithMaxCallStackSize sets the maximum call depth of the compiler script.
func WithMaxCallStackSize(size int) FunctionalOption {
	return func(e *Engine) error {
		if size <= 0 {
			return fmt.Errorf("max call stack size must be positive, got %d", size)
		}
		e.maxCallStackSize = size
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the engine.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(e *Engine) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		e.logHandler = handler
		e.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the engine.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(e *Engine) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		e.logger = logger
		e.logHandler = nil
		return nil
	}
}

func (e *Engine) setupLogger() {
	if e.logger != nil {
		e.logHandler = e.logger.Handler()
		return
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "goja", "Engine")
}

func (e *Engine) validate() error {
	if e.logHandler == nil && e.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	if e.entryPoint == "" {
		return fmt.Errorf("entry point must be specified")
	}
	return nil
}

func (e *Engine) applyDefaults() {
	if e.logHandler == nil && e.logger == nil {
		e.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	e.entryPoint = coffeejs.EntryPoint
	e.maxCallStackSize = DefaultMaxCallStackSize
}
