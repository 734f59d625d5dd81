package helpers

import (
	"log/slog"
	"os"
)

// SetupLogger creates the grouped logger used by a component.
// When handler is nil a stderr text handler grouped under component is created and a
// warning is logged, so a missing handler is visible rather than silent.
//
// Parameters:
//   - handler: the slog.Handler to use, or nil for the default
//   - component: the component family (e.g. "goja", "minify")
//   - groupName: optional group within the component (e.g. "Engine")
//
// Returns the effective handler and a logger built from it.
func SetupLogger(handler slog.Handler, component string, groupName string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil).WithGroup(component)
		slog.New(handler).Warn("Handler is nil, using the default logger configuration.")
	}

	if groupName == "" {
		return handler, slog.New(handler)
	}
	return handler, slog.New(handler.WithGroup(groupName))
}
