// Package logging builds the slog handlers used by the coffeec command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// Levels lists the accepted log level names.
var Levels = []string{"trace", "debug", "info", "warn", "warning", "error"}

// Formats lists the accepted log formats.
var Formats = []string{"text", "json"}

// ValidateLevel returns an error for an unknown log level name.
func ValidateLevel(logLevel string) error {
	if !slices.Contains(Levels, strings.ToLower(logLevel)) {
		return fmt.Errorf("unknown log level %q, expected one of %s", logLevel, strings.Join(Levels, ", "))
	}
	return nil
}

// ValidateFormat returns an error for an unknown log format name.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, strings.ToLower(format)) {
		return fmt.Errorf("unknown log format %q, expected one of %s", format, strings.Join(Formats, ", "))
	}
	return nil
}

// SetupHandler returns a JSON handler for format "json" and a text handler otherwise.
func SetupHandler(format, logLevel string, writer io.Writer) slog.Handler {
	if strings.EqualFold(format, "json") {
		return SetupHandlerJSON(logLevel, writer)
	}
	return SetupHandlerText(logLevel, writer)
}

// SetupHandlerText configures a text slog handler with the provided writer and log level
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	reportCaller := false
	reportTimestamp := false
	lvl := log.InfoLevel
	switch strings.ToLower(logLevel) {
	case "trace":
		reportCaller = true
		reportTimestamp = true
		lvl = log.DebugLevel
	case "debug":
		reportTimestamp = true
		lvl = log.DebugLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: reportTimestamp,
		ReportCaller:    reportCaller,
		Level:           lvl,
		Prefix:          "coffeec",
	})
}

// SetupHandlerJSON configures a JSON slog handler with the provided writer and log level
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "trace", "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     level,
		AddSource: strings.EqualFold(logLevel, "trace"),
	})
}
