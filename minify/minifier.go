// Package minify compresses generated JavaScript with esbuild's transform API.
//
// Diagnostics reported by esbuild are returned in a Result rather than printed, and
// MinifyOrError forwards them to the configured logger.
package minify

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/robbyt/go-coffeescript/errz"
)

// Result is the outcome of one minification.
type Result struct {
	Success  bool
	Code     string
	Errors   []errz.Diagnostic
	Warnings []errz.Diagnostic
}

func (r *Result) String() string {
	return fmt.Sprintf(
		"minify.Result{Success: %t, Chars: %d, Errors: %d, Warnings: %d}",
		r.Success, len(r.Code), len(r.Errors), len(r.Warnings),
	)
}

// Minifier compresses JavaScript. It holds no per-call state and is safe for concurrent
// use.
type Minifier struct {
	externsSource io.Reader
	extraExterns  []string
	externs       *Externs
	reserved      string

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Minifier. Extern declarations are loaded here, so a missing or empty
// externs resource fails construction with *errz.EnvironmentError.
func New(opts ...FunctionalOption) (*Minifier, error) {
	m := &Minifier{}
	m.applyDefaults()

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("error applying minifier option: %w", err)
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid minifier configuration: %w", err)
	}

	m.setupLogger()

	if err := m.loadExterns(); err != nil {
		m.logger.Error("Failed to load extern declarations", "error", err)
		return nil, errz.NewEnvironmentError("failed to load extern declarations", err)
	}
	return m, nil
}

func (m *Minifier) loadExterns() error {
	var err error
	if m.externsSource != nil {
		m.externs, err = ParseExterns(m.externsSource)
	} else {
		m.externs, err = DefaultExterns()
	}
	if err != nil {
		return err
	}
	if len(m.extraExterns) > 0 {
		x, err := m.externs.With(m.extraExterns...)
		if err != nil {
			return err
		}
		m.externs = x
	}
	m.reserved = m.externs.reservedPattern()
	return nil
}

func (m *Minifier) String() string {
	return fmt.Sprintf("minify.Minifier{Externs: %d}", m.externs.Len())
}

// Externs returns the names preserved by the advanced level.
func (m *Minifier) Externs() *Externs {
	return m.externs
}

// Minify compresses src at the given level. name is the display name used in diagnostics.
// An invalid level is treated as DefaultLevel.
func (m *Minifier) Minify(src, name string, level Level) *Result {
	if !level.Valid() {
		level = DefaultLevel
	}
	logger := m.logger.WithGroup("minify")
	startTime := time.Now()

	out := api.Transform(src, m.transformOptions(name, level))

	result := &Result{
		Success:  len(out.Errors) == 0,
		Errors:   toDiagnostics(name, out.Errors),
		Warnings: toDiagnostics(name, out.Warnings),
	}
	if result.Success {
		result.Code = string(out.Code)
	}

	logger.Debug("Minification finished",
		"source", name,
		"level", level,
		"inputChars", len(src),
		"outputChars", len(result.Code),
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
		"duration", time.Since(startTime),
	)
	return result
}

// MinifyOrError runs Minify, logs its warnings at info level and its errors at error
// level, and returns the code or a *errz.CompileError carrying every error diagnostic.
func (m *Minifier) MinifyOrError(src, name string, level Level) (string, error) {
	result := m.Minify(src, name, level)
	m.report(result)
	if !result.Success {
		return "", &errz.CompileError{
			Source:      name,
			Message:     fmt.Sprintf("minifier failed: %d error(s)", len(result.Errors)),
			Diagnostics: result.Errors,
		}
	}
	return result.Code, nil
}

func (m *Minifier) report(result *Result) {
	for _, w := range result.Warnings {
		m.logger.Info("Minifier warning", "diagnostic", w.String())
	}
	for _, e := range result.Errors {
		m.logger.Error("Minifier error", "diagnostic", e.String())
	}
}

func (m *Minifier) transformOptions(name string, level Level) api.TransformOptions {
	opts := api.TransformOptions{
		Loader:           api.LoaderJS,
		Sourcefile:       name,
		Charset:          api.CharsetUTF8,
		LogLevel:         api.LogLevelSilent,
		MinifyWhitespace: true,
	}
	if level >= Simple {
		opts.MinifySyntax = true
		opts.MinifyIdentifiers = true
	}
	if level >= Advanced {
		opts.MangleProps = "."
		opts.ReserveProps = m.reserved
	}
	return opts
}

func toDiagnostics(name string, msgs []api.Message) []errz.Diagnostic {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]errz.Diagnostic, 0, len(msgs))
	for _, msg := range msgs {
		d := errz.Diagnostic{SourceName: name, Description: strings.TrimSpace(msg.Text)}
		if loc := msg.Location; loc != nil {
			if loc.File != "" {
				d.SourceName = loc.File
			}
			d.Line = loc.Line
			d.Column = loc.Column + 1
		}
		out = append(out, d)
	}
	return out
}
