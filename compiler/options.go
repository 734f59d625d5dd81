package compiler

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/robbyt/go-coffeescript/engine"
	"github.com/robbyt/go-coffeescript/internal/helpers"
	"github.com/robbyt/go-coffeescript/loader"
	"github.com/robbyt/go-coffeescript/minify"
	"github.com/robbyt/go-coffeescript/options"
	"github.com/robbyt/go-coffeescript/output"
)

// FunctionalOption is a function that configures a Compiler instance
type FunctionalOption func(*Compiler) error

// WithEngine sets the engine that runs the compiler script. It takes precedence over
// WithScriptLoader.
func WithEngine(e engine.Engine) FunctionalOption {
	return func(c *Compiler) error {
		if e == nil {
			return fmt.Errorf("engine cannot be nil")
		}
		c.engine = e
		return nil
	}
}

// WithScriptLoader sets where the compiler script is read from. The compiler then owns an
// engine for that script instead of sharing the process-wide default.
func WithScriptLoader(l loader.Loader) FunctionalOption {
	return func(c *Compiler) error {
		if l == nil {
			return fmt.Errorf("script loader cannot be nil")
		}
		c.settings.loader = l
		return nil
	}
}

// WithOptions sets the compiler flags.
func WithOptions(flags ...options.Flag) FunctionalOption {
	return func(c *Compiler) error {
		c.settings.optionSet = options.New(flags...)
		return nil
	}
}

// WithOptionSet sets the compiler flags from an existing set.
func WithOptionSet(set *options.OptionSet) FunctionalOption {
	return func(c *Compiler) error {
		if set == nil {
			return fmt.Errorf("option set cannot be nil")
		}
		c.settings.optionSet = set
		return nil
	}
}

// WithOptionArgs sets the compiler flags from command-line style arguments.
func WithOptionArgs(args ...string) FunctionalOption {
	return func(c *Compiler) error {
		c.settings.optionSet = options.ParseArgs(args...)
		return nil
	}
}

// WithCompress sets the explicit compress flag.
func WithCompress(compress bool) FunctionalOption {
	return func(c *Compiler) error {
		c.settings.compress = &compress
		return nil
	}
}

// WithEncoding sets the IANA name of the character encoding of written files.
func WithEncoding(name string) FunctionalOption {
	return func(c *Compiler) error {
		if _, err := output.ResolveEncoding(name); err != nil {
			return err
		}
		if name != "" {
			c.settings.encoding = name
		}
		return nil
	}
}

// WithMinifyLevel sets the minification level used for compressed output.
func WithMinifyLevel(level minify.Level) FunctionalOption {
	return func(c *Compiler) error {
		if !level.Valid() {
			return fmt.Errorf("%w: %d", minify.ErrUnknownLevel, int(level))
		}
		c.settings.level = level
		return nil
	}
}

// WithMinifier sets the minifier used for compressed output.
func WithMinifier(m output.Minifier) FunctionalOption {
	return func(c *Compiler) error {
		if m == nil {
			return fmt.Errorf("minifier cannot be nil")
		}
		c.minifier = m
		return nil
	}
}

// WithFs sets the file system sources are read from and targets written to.
func WithFs(fs afero.Fs) FunctionalOption {
	return func(c *Compiler) error {
		if fs == nil {
			return fmt.Errorf("file system cannot be nil")
		}
		c.fs = fs
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the compiler.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(c *Compiler) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.logHandler = handler
		c.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the compiler.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(c *Compiler) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		c.logHandler = nil
		return nil
	}
}

func (c *Compiler) setupLogger() {
	if c.logger != nil {
		c.logHandler = c.logger.Handler()
		return
	}
	c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "coffeescript", "Compiler")
}

func (c *Compiler) validate() error {
	if c.logHandler == nil && c.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	if c.fs == nil {
		return fmt.Errorf("file system must be specified")
	}
	return nil
}

func (c *Compiler) applyDefaults() {
	if c.logHandler == nil && c.logger == nil {
		c.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	c.fs = afero.NewOsFs()
	c.settings = settings{
		encoding:  output.DefaultEncoding,
		optionSet: options.New(),
		level:     minify.DefaultLevel,
	}
}
