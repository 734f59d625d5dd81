// Package output writes generated JavaScript to its target file, skipping targets that are
// newer than their source and minifying when compression is requested.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"

	"github.com/robbyt/go-coffeescript/errz"
	"github.com/robbyt/go-coffeescript/minify"
)

const (
	targetPerm = 0o644
	dirPerm    = 0o755
)

// Minifier is the part of *minify.Minifier the writer uses.
type Minifier interface {
	MinifyOrError(src, name string, level minify.Level) (string, error)
}

// Writer persists generated JavaScript. It holds no per-target state and is safe for
// concurrent use on distinct targets.
type Writer struct {
	fs           afero.Fs
	encodingName string
	encoding     encoding.Encoding
	minifier     Minifier
	level        minify.Level

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Writer.
func New(opts ...FunctionalOption) (*Writer, error) {
	w := &Writer{}
	w.applyDefaults()

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, fmt.Errorf("error applying writer option: %w", err)
		}
	}

	if err := w.validate(); err != nil {
		return nil, fmt.Errorf("invalid writer configuration: %w", err)
	}

	w.setupLogger()

	if w.minifier == nil {
		m, err := minify.New(minify.WithLogHandler(w.logHandler))
		if err != nil {
			return nil, err
		}
		w.minifier = m
	}
	return w, nil
}

func (w *Writer) String() string {
	return fmt.Sprintf("output.Writer{Encoding: %s, Level: %s}", w.encodingName, w.level)
}

// IsStale reports whether target has to be regenerated: when force is set, when target
// does not exist, or when it was last modified before sourceModTime.
func (w *Writer) IsStale(target string, sourceModTime time.Time, force bool) (bool, error) {
	if force {
		return true, nil
	}

	info, err := w.fs.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, errz.NewIOError("stat", target, err)
	}
	if info.IsDir() {
		return false, errz.NewIOError("stat", target, ErrTargetIsDirectory)
	}
	return info.ModTime().Before(sourceModTime), nil
}

// WriteIfStale regenerates target when IsStale says so. produce is only called for a
// stale target; its error is returned unchanged and nothing is written. With compress set
// the produced code is minified first, and a minifier failure also leaves target untouched.
// The returned bool reports whether target was written.
func (w *Writer) WriteIfStale(
	target string,
	sourceModTime time.Time,
	force, compress bool,
	produce func() (string, error),
) (bool, error) {
	if produce == nil {
		return false, ErrProducerNil
	}
	logger := w.logger.WithGroup("writeIfStale")

	stale, err := w.IsStale(target, sourceModTime, force)
	if err != nil {
		return false, err
	}
	if !stale {
		logger.Debug("Target is up to date", "target", target)
		return false, nil
	}

	content, err := produce()
	if err != nil {
		logger.Debug("Producing content failed", "target", target, "error", err)
		return false, err
	}

	if err := w.Write(target, content, compress); err != nil {
		return false, err
	}
	return true, nil
}

// Write post-processes content and replaces target with it. The new content is written to
// a temporary file next to target and renamed over it, so target is either untouched or
// complete. Missing parent directories are created.
func (w *Writer) Write(target, content string, compress bool) error {
	logger := w.logger.WithGroup("write")
	startTime := time.Now()

	if compress {
		minified, err := w.minifier.MinifyOrError(content, filepath.Base(target), w.level)
		if err != nil {
			logger.Warn("Minification failed; target not written", "target", target, "error", err)
			return err
		}
		content = minified
	}

	data, err := encode(w.encoding, content)
	if err != nil {
		return errz.NewIOError("encode", target, err)
	}

	if err := w.replace(target, data); err != nil {
		logger.Error("Failed to write target", "target", target, "error", err)
		return err
	}

	logger.Info("Wrote target",
		"target", target,
		"bytes", len(data),
		"compressed", compress,
		"duration", time.Since(startTime),
	)
	return nil
}

// targetMode keeps the permissions of an existing target; new targets get targetPerm.
func (w *Writer) targetMode(target string) fs.FileMode {
	info, err := w.fs.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return targetPerm
	}
	return info.Mode().Perm()
}

func (w *Writer) replace(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := w.fs.MkdirAll(dir, dirPerm); err != nil {
		return errz.NewIOError("mkdir", dir, err)
	}

	tmp, err := afero.TempFile(w.fs, dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return errz.NewIOError("create", target, err)
	}
	tmpName := tmp.Name()

	cleanup := func(op string, cause error) error {
		_ = tmp.Close()
		_ = w.fs.Remove(tmpName)
		return errz.NewIOError(op, target, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup("write", err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup("close", err)
	}
	if err := w.fs.Chmod(tmpName, w.targetMode(target)); err != nil {
		return cleanup("chmod", err)
	}
	if err := w.fs.Rename(tmpName, target); err != nil {
		return cleanup("rename", err)
	}
	return nil
}
