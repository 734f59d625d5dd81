package minify

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/robbyt/go-coffeescript/internal/helpers"
)

// FunctionalOption is a function that configures a Minifier instance
type FunctionalOption func(*Minifier) error

// WithExterns replaces the default extern declarations with those read from r. The
// declarations are parsed by New.
func WithExterns(r io.Reader) FunctionalOption {
	return func(m *Minifier) error {
		if r == nil {
			return fmt.Errorf("externs reader cannot be nil")
		}
		m.externsSource = r
		return nil
	}
}

// WithExternNames declares additional names to preserve, on top of the default or
// WithExterns declarations.
func WithExternNames(names ...string) FunctionalOption {
	return func(m *Minifier) error {
		m.extraExterns = append(m.extraExterns, names...)
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the minifier.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(m *Minifier) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		m.logHandler = handler
		m.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the minifier.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(m *Minifier) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		m.logger = logger
		m.logHandler = nil
		return nil
	}
}

func (m *Minifier) setupLogger() {
	if m.logger != nil {
		m.logHandler = m.logger.Handler()
		return
	}
	m.logHandler, m.logger = helpers.SetupLogger(m.logHandler, "minify", "Minifier")
}

func (m *Minifier) validate() error {
	if m.logHandler == nil && m.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	return nil
}

func (m *Minifier) applyDefaults() {
	if m.logHandler == nil && m.logger == nil {
		m.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
}
