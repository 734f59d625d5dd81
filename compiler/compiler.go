// Package compiler turns CoffeeScript into JavaScript files.
//
// A Compiler drives the embedded CoffeeScript compiler through an engine.Engine, and uses
// an output.Writer to write results only when targets are stale, minifying them when
// compression is enabled.
//
// Configuration setters take effect for calls issued after they return. A call in flight
// keeps the configuration it started with.
package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/robbyt/go-coffeescript/engine"
	gojaEngine "github.com/robbyt/go-coffeescript/engines/goja"
	"github.com/robbyt/go-coffeescript/errz"
	"github.com/robbyt/go-coffeescript/minify"
	"github.com/robbyt/go-coffeescript/output"
	"github.com/robbyt/go-coffeescript/source"
)

// Compiler compiles CoffeeScript sources. It is safe for concurrent use.
type Compiler struct {
	mu       sync.RWMutex
	settings settings

	// engine is set with WithEngine and never replaced.
	engine engine.Engine

	// scriptEngine evaluates the script of settings.loader; it is rebuilt when the loader
	// generation changes.
	scriptMu     sync.Mutex
	scriptEngine *gojaEngine.Engine
	scriptGen    uint64

	fs       afero.Fs
	minifier output.Minifier

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Compiler.
func New(opts ...FunctionalOption) (*Compiler, error) {
	c := &Compiler{}
	c.applyDefaults()

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying compiler option: %w", err)
		}
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid compiler configuration: %w", err)
	}

	c.setupLogger()

	if c.minifier == nil {
		m, err := minify.New(minify.WithLogHandler(c.logHandler))
		if err != nil {
			return nil, err
		}
		c.minifier = m
	}
	return c, nil
}

func (c *Compiler) String() string {
	s := c.snapshot()
	return fmt.Sprintf(
		"compiler.Compiler{Options: %s, Compress: %t, Encoding: %s, Level: %s}",
		s.optionSet.Serialize(), s.isCompress(), s.encoding, s.level,
	)
}

// CompileString compiles text under the display name "<inline>".
func (c *Compiler) CompileString(text string) (string, error) {
	return c.CompileNamed(text, engine.InlineName)
}

// CompileNamed compiles text; name is the display name used in diagnostics.
func (c *Compiler) CompileNamed(text, name string) (string, error) {
	return c.compile(c.snapshot(), text, name)
}

// CompileReader reads r to the end and compiles its content.
func (c *Compiler) CompileReader(r io.Reader, name string) (string, error) {
	if r == nil {
		return "", ErrReaderNil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", errz.NewIOError("read", name, err)
	}
	return c.CompileNamed(source.Normalize(b), name)
}

// CompileFile compiles the file at path. Its base name is the display name.
func (c *Compiler) CompileFile(path string) (string, error) {
	return c.CompileFileNamed(path, filepath.Base(path))
}

// CompileFileNamed compiles the file at path under the given display name.
func (c *Compiler) CompileFileNamed(path, name string) (string, error) {
	src, err := source.NewFile(c.fs, path)
	if err != nil {
		return "", err
	}
	return c.compile(c.snapshot(), src.NormalizedContent(), name)
}

// CompileSource compiles src under its own name.
func (c *Compiler) CompileSource(src source.Source) (string, error) {
	if src == nil {
		return "", ErrSourceNil
	}
	return c.compile(c.snapshot(), src.NormalizedContent(), src.Name())
}

// CompileFileTo compiles the file at in and writes the result to out. Unless force is
// set, out is only regenerated when it is missing or older than in. The returned bool
// reports whether out was written.
func (c *Compiler) CompileFileTo(in, out string, force bool) (bool, error) {
	snap := c.snapshot()

	info, err := c.fs.Stat(in)
	if err != nil {
		return false, errz.NewIOError("stat", in, err)
	}

	w, err := c.writer(snap)
	if err != nil {
		return false, err
	}

	return w.WriteIfStale(out, info.ModTime(), force, snap.isCompress(), func() (string, error) {
		src, err := source.NewFile(c.fs, in)
		if err != nil {
			return "", err
		}
		return c.compile(snap, src.NormalizedContent(), src.Name())
	})
}

// CompileSourceTo compiles src and writes the result to out. Staleness is judged against
// src.LastModified rather than any file on disk, so sources assembled from several files
// can report their newest modification time.
func (c *Compiler) CompileSourceTo(src source.Source, out string, force bool) (bool, error) {
	if src == nil {
		return false, ErrSourceNil
	}
	snap := c.snapshot()

	w, err := c.writer(snap)
	if err != nil {
		return false, err
	}

	return w.WriteIfStale(out, src.LastModified(), force, snap.isCompress(), func() (string, error) {
		return c.compile(snap, src.NormalizedContent(), src.Name())
	})
}

// CompileFileAs compiles the file at in under the given display name and always writes
// the result to out.
func (c *Compiler) CompileFileAs(in, out, name string) error {
	snap := c.snapshot()

	src, err := source.NewFile(c.fs, in)
	if err != nil {
		return err
	}
	js, err := c.compile(snap, src.NormalizedContent(), name)
	if err != nil {
		return err
	}

	w, err := c.writer(snap)
	if err != nil {
		return err
	}
	return w.Write(out, js, snap.isCompress())
}

func (c *Compiler) compile(snap settings, text, name string) (string, error) {
	logger := c.logger.WithGroup("compile")

	eng, err := c.resolveEngine(snap)
	if err != nil {
		return "", err
	}

	req := engine.NewRequest(text, name, snap.optionSet)
	req.LogHandler = c.logHandler
	startTime := time.Now()
	js, err := eng.Invoke(req)
	if err != nil {
		logger.Debug("Compilation failed", "request", req, "error", err)
		return "", err
	}

	logger.Debug("Compiled", "request", req, "duration", time.Since(startTime))
	return js, nil
}

// resolveEngine picks the engine for a call: the one given to WithEngine, else an engine
// for the configured script location, else the process-wide default engine.
func (c *Compiler) resolveEngine(snap settings) (engine.Engine, error) {
	if c.engine != nil {
		return c.engine, nil
	}
	if snap.loader == nil {
		return gojaEngine.Default(), nil
	}

	c.scriptMu.Lock()
	defer c.scriptMu.Unlock()

	if c.scriptEngine != nil && c.scriptGen == snap.loaderGen {
		return c.scriptEngine, nil
	}

	e, err := gojaEngine.New(
		gojaEngine.WithLoader(snap.loader),
		gojaEngine.WithLogHandler(c.logHandler),
	)
	if err != nil {
		return nil, errz.NewEnvironmentError("failed to create script engine", err)
	}
	// a call that started before the loader was replaced must not evict the newer engine
	if c.scriptEngine == nil || snap.loaderGen > c.scriptGen {
		c.scriptEngine = e
		c.scriptGen = snap.loaderGen
	}
	return e, nil
}

func (c *Compiler) writer(snap settings) (*output.Writer, error) {
	w, err := output.New(
		output.WithFs(c.fs),
		output.WithEncoding(snap.encoding),
		output.WithMinifier(c.minifier),
		output.WithMinifyLevel(snap.level),
		output.WithLogHandler(c.logHandler),
	)
	if err != nil {
		return nil, errz.NewEnvironmentError("failed to create output writer", err)
	}
	return w, nil
}
