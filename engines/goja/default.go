package goja

import (
	"log/slog"
	"sync"
)

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine for the compiler script bundled by the coffeejs
// package. It is created on first use and shared by every compiler that does not configure
// its own engine; the script itself is evaluated on the first compilation. Callers route the
// logs of their compilations through engine.Request.LogHandler.
func Default() *Engine {
	defaultOnce.Do(func() {
		e, err := New(WithLogHandler(slog.Default().Handler()))
		if err != nil {
			// unreachable: the options above cannot fail
			panic(err)
		}
		defaultEngine = e
	})
	return defaultEngine
}
