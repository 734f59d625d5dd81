package watch

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/robbyt/go-coffeescript/internal/helpers"
)

// DefaultDebounce is how long a changed input has to stay quiet before it is recompiled.
const DefaultDebounce = 100 * time.Millisecond

// FunctionalOption is a function that configures a Watcher instance
type FunctionalOption func(*Watcher) error

// WithDebounce sets the quiet period applied to bursts of events for the same input.
func WithDebounce(d time.Duration) FunctionalOption {
	return func(w *Watcher) error {
		if d < 0 {
			return fmt.Errorf("debounce cannot be negative: %s", d)
		}
		w.debounce = d
		return nil
	}
}

// WithConcurrency limits parallel jobs during the initial build.
func WithConcurrency(limit int) FunctionalOption {
	return func(w *Watcher) error {
		w.concurrency = limit
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the watcher.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(w *Watcher) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		w.logHandler = handler
		w.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the watcher.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(w *Watcher) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		w.logger = logger
		w.logHandler = nil
		return nil
	}
}

func (w *Watcher) setupLogger() {
	if w.logger != nil {
		w.logHandler = w.logger.Handler()
		return
	}
	w.logHandler, w.logger = helpers.SetupLogger(w.logHandler, "watch", "Watcher")
}

func (w *Watcher) applyDefaults() {
	if w.logHandler == nil && w.logger == nil {
		w.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	w.debounce = DefaultDebounce
}
