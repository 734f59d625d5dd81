package goja

import (
	"context"
	"log/slog"
	"strings"

	gojaSDK "github.com/dop251/goja"
)

// scriptLogLevels maps the methods of the `logger` global onto slog levels.
var scriptLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// bindLogger installs a `logger` global whose methods forward their arguments to the logger
// current returns at the time of the call.
func bindLogger(rt *gojaSDK.Runtime, current func() *slog.Logger) error {
	obj := rt.NewObject()
	for name, level := range scriptLogLevels {
		err := obj.Set(name, func(call gojaSDK.FunctionCall) gojaSDK.Value {
			current().Log(context.Background(), level, joinArguments(call.Arguments))
			return gojaSDK.Undefined()
		})
		if err != nil {
			return err
		}
	}
	return rt.Set("logger", obj)
}

func joinArguments(args []gojaSDK.Value) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		parts = append(parts, arg.String())
	}
	return strings.Join(parts, " ")
}
