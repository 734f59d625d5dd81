// Package watch recompiles build jobs whenever their input files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robbyt/go-coffeescript/compiler"
	"github.com/robbyt/go-coffeescript/errz"
)

// Compiler is the part of *compiler.Compiler the watcher drives.
type Compiler interface {
	CompileFileTo(in, out string, force bool) (bool, error)
	CompileAll(ctx context.Context, jobs []compiler.Job, limit int) (compiler.BatchResult, error)
}

// Watcher runs an initial build and then recompiles each job when its input is written,
// created or replaced. Compile errors are logged and watching continues; environment
// errors stop the watcher.
type Watcher struct {
	compiler    Compiler
	all         []compiler.Job
	jobs        map[string][]compiler.Job
	dirs        []string
	debounce    time.Duration
	concurrency int

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Watcher for jobs.
func New(c Compiler, jobs []compiler.Job, opts ...FunctionalOption) (*Watcher, error) {
	if c == nil {
		return nil, ErrCompilerNil
	}
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	w := &Watcher{compiler: c}
	w.applyDefaults()
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, fmt.Errorf("error applying watcher option: %w", err)
		}
	}
	w.setupLogger()

	w.jobs = make(map[string][]compiler.Job, len(jobs))
	seenDirs := make(map[string]bool)
	for _, job := range jobs {
		in, err := filepath.Abs(job.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", job.Input, err)
		}
		job.Input = in
		w.all = append(w.all, job)
		w.jobs[in] = append(w.jobs[in], job)

		// editors often replace files, so the parent directory is watched
		dir := filepath.Dir(in)
		if !seenDirs[dir] {
			seenDirs[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

func (w *Watcher) String() string {
	return fmt.Sprintf("watch.Watcher{Inputs: %d, Dirs: %d, Debounce: %s}", len(w.jobs), len(w.dirs), w.debounce)
}

// Run blocks until ctx is done or an environment error occurs. It returns nil on
// cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.logger.WithGroup("run")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logger.Debug("Watching directory", "dir", dir)
	}

	result, err := w.compiler.CompileAll(ctx, w.all, w.concurrency)
	if errors.Is(err, errz.ErrEnvironment) {
		return err
	}
	if err != nil {
		logger.Error("Initial build had failures", "error", err)
	}
	logger.Info("Watching for changes",
		"inputs", len(w.jobs),
		"written", result.Written,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	changed := make(chan string)
	var (
		timersMu sync.Mutex
		timers   = make(map[string]*time.Timer)
	)
	defer func() {
		timersMu.Lock()
		defer timersMu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	schedule := func(in string) {
		timersMu.Lock()
		defer timersMu.Unlock()
		if t, ok := timers[in]; ok {
			t.Reset(w.debounce)
			return
		}
		timers[in] = time.AfterFunc(w.debounce, func() {
			timersMu.Lock()
			delete(timers, in)
			timersMu.Unlock()
			select {
			case changed <- in:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			in := filepath.Clean(event.Name)
			if _, tracked := w.jobs[in]; !tracked {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logger.Debug("Input changed", "input", in, "op", event.Op.String())
				schedule(in)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("File system watcher error", "error", err)

		case in := <-changed:
			if err := w.recompile(in); err != nil {
				return err
			}
		}
	}
}

// recompile runs every job of input in. Only environment errors are returned.
func (w *Watcher) recompile(in string) error {
	logger := w.logger.WithGroup("recompile")

	for _, job := range w.jobs[in] {
		startTime := time.Now()
		_, err := w.compiler.CompileFileTo(job.Input, job.Output, true)
		switch {
		case errors.Is(err, errz.ErrEnvironment):
			logger.Error("Compiler unavailable", "job", job.String(), "error", err)
			return err
		case err != nil:
			logger.Error("Recompile failed", "job", job.String(), "error", err)
		default:
			logger.Info("Recompiled", "job", job.String(), "duration", time.Since(startTime))
		}
	}
	return nil
}
