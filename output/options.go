package output

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/robbyt/go-coffeescript/internal/helpers"
	"github.com/robbyt/go-coffeescript/minify"
)

// FunctionalOption is a function that configures a Writer instance
type FunctionalOption func(*Writer) error

// WithFs sets the file system targets are written to. Defaults to the OS file system.
func WithFs(fs afero.Fs) FunctionalOption {
	return func(w *Writer) error {
		if fs == nil {
			return fmt.Errorf("file system cannot be nil")
		}
		w.fs = fs
		return nil
	}
}

// WithEncoding sets the IANA name of the character encoding targets are written in.
func WithEncoding(name string) FunctionalOption {
	return func(w *Writer) error {
		enc, err := ResolveEncoding(name)
		if err != nil {
			return err
		}
		w.encodingName = name
		w.encoding = enc
		return nil
	}
}

// WithMinifier sets the minifier used when output is compressed. When not set, a minifier
// with the default extern declarations is created.
func WithMinifier(m Minifier) FunctionalOption {
	return func(w *Writer) error {
		if m == nil {
			return fmt.Errorf("minifier cannot be nil")
		}
		w.minifier = m
		return nil
	}
}

// WithMinifyLevel sets the minification level used when output is compressed.
func WithMinifyLevel(level minify.Level) FunctionalOption {
	return func(w *Writer) error {
		if !level.Valid() {
			return fmt.Errorf("%w: %d", minify.ErrUnknownLevel, int(level))
		}
		w.level = level
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the writer.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(w *Writer) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		w.logHandler = handler
		w.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the writer.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(w *Writer) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		w.logger = logger
		w.logHandler = nil
		return nil
	}
}

func (w *Writer) setupLogger() {
	if w.logger != nil {
		w.logHandler = w.logger.Handler()
		return
	}
	w.logHandler, w.logger = helpers.SetupLogger(w.logHandler, "output", "Writer")
}

func (w *Writer) validate() error {
	if w.logHandler == nil && w.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	if w.fs == nil {
		return fmt.Errorf("file system must be specified")
	}
	return nil
}

func (w *Writer) applyDefaults() {
	if w.logHandler == nil && w.logger == nil {
		w.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	w.fs = afero.NewOsFs()
	w.encodingName = DefaultEncoding
	w.encoding, _ = ResolveEncoding("")
	w.level = minify.DefaultLevel
}
