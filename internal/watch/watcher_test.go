package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-coffeescript/compiler"
	"github.com/robbyt/go-coffeescript/errz"
)

type fakeCompiler struct {
	built   chan []compiler.Job
	calls   chan compiler.Job
	allErr  error
	fileErr error
}

func newFakeCompiler() *fakeCompiler {
	return &fakeCompiler{
		built: make(chan []compiler.Job, 1),
		calls: make(chan compiler.Job, 16),
	}
}

func (f *fakeCompiler) CompileAll(_ context.Context, jobs []compiler.Job, _ int) (compiler.BatchResult, error) {
	f.built <- jobs
	return compiler.BatchResult{Written: len(jobs)}, f.allErr
}

func (f *fakeCompiler) CompileFileTo(in, out string, force bool) (bool, error) {
	f.calls <- compiler.Job{Input: in, Output: out, Force: force}
	return f.fileErr == nil, f.fileErr
}

func discardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func startWatcher(t *testing.T, w *Watcher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting")
		var zero T
		return zero
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	jobs := []compiler.Job{{Input: "src/a.coffee", Output: "out/a.js"}}

	_, err := New(nil, jobs)
	require.ErrorIs(t, err, ErrCompilerNil)

	_, err = New(newFakeCompiler(), nil)
	require.ErrorIs(t, err, ErrNoJobs)

	_, err = New(newFakeCompiler(), jobs, WithDebounce(-time.Second))
	require.Error(t, err)

	_, err = New(newFakeCompiler(), jobs, WithLogHandler(nil))
	require.Error(t, err)

	w, err := New(newFakeCompiler(), append(jobs,
		compiler.Job{Input: "src/b.coffee", Output: "out/b.js"},
		compiler.Job{Input: "src/a.coffee", Output: "out/a.min.js"},
	), WithLogHandler(discardHandler()))
	require.NoError(t, err)
	assert.Equal(t, "watch.Watcher{Inputs: 2, Dirs: 1, Debounce: 100ms}", w.String())
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tracked := filepath.Join(dir, "app.coffee")
	writeFile(t, tracked, "x = 1")

	fc := newFakeCompiler()
	w, err := New(fc, []compiler.Job{{Input: tracked, Output: filepath.Join(dir, "app.js")}},
		WithDebounce(20*time.Millisecond),
		WithLogHandler(discardHandler()),
	)
	require.NoError(t, err)

	cancel, done := startWatcher(t, w)

	built := waitFor(t, fc.built)
	require.Len(t, built, 1)
	assert.Equal(t, tracked, built[0].Input)

	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeFile(t, tracked, "x = 2")

	call := waitFor(t, fc.calls)
	assert.Equal(t, tracked, call.Input)
	assert.Equal(t, filepath.Join(dir, "app.js"), call.Output)
	assert.True(t, call.Force)

	cancel()
	require.NoError(t, waitFor(t, done))
}

func TestRunCompileErrorsKeepWatching(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tracked := filepath.Join(dir, "app.coffee")
	writeFile(t, tracked, "x = 1")

	fc := newFakeCompiler()
	fc.allErr = &errz.CompileError{Source: "app.coffee", Message: "unexpected ->"}
	fc.fileErr = &errz.CompileError{Source: "app.coffee", Message: "unexpected ->"}

	w, err := New(fc, []compiler.Job{{Input: tracked, Output: filepath.Join(dir, "app.js")}},
		WithDebounce(10*time.Millisecond),
		WithLogHandler(discardHandler()),
	)
	require.NoError(t, err)

	cancel, done := startWatcher(t, w)
	waitFor(t, fc.built)

	writeFile(t, tracked, "f = ->")
	waitFor(t, fc.calls)

	select {
	case err := <-done:
		require.FailNow(t, "watcher stopped after a compile error", "error: %v", err)
	default:
	}

	cancel()
	require.NoError(t, waitFor(t, done))
}

func TestRunEnvironmentErrors(t *testing.T) {
	t.Parallel()

	envErr := errz.NewEnvironmentError("compiler script unavailable", nil)

	t.Run("initial build", func(t *testing.T) {
		dir := t.TempDir()
		fc := newFakeCompiler()
		fc.allErr = envErr

		w, err := New(fc, []compiler.Job{{Input: filepath.Join(dir, "a.coffee"), Output: filepath.Join(dir, "a.js")}},
			WithLogHandler(discardHandler()))
		require.NoError(t, err)

		_, done := startWatcher(t, w)
		require.ErrorIs(t, waitFor(t, done), errz.ErrEnvironment)
	})

	t.Run("recompile", func(t *testing.T) {
		dir := t.TempDir()
		tracked := filepath.Join(dir, "a.coffee")
		writeFile(t, tracked, "a = 1")

		fc := newFakeCompiler()
		fc.fileErr = envErr

		w, err := New(fc, []compiler.Job{{Input: tracked, Output: filepath.Join(dir, "a.js")}},
			WithDebounce(10*time.Millisecond),
			WithLogHandler(discardHandler()))
		require.NoError(t, err)

		_, done := startWatcher(t, w)
		waitFor(t, fc.built)

		writeFile(t, tracked, "a = 2")
		require.ErrorIs(t, waitFor(t, done), errz.ErrEnvironment)
	})

	t.Run("missing directory", func(t *testing.T) {
		fc := newFakeCompiler()
		w, err := New(fc, []compiler.Job{{Input: filepath.Join(t.TempDir(), "gone", "a.coffee"), Output: "a.js"}},
			WithLogHandler(discardHandler()))
		require.NoError(t, err)

		require.Error(t, w.Run(context.Background()))
	})
}
