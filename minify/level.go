package minify

import (
	"fmt"
	"strings"
)

// Level selects how aggressively generated JavaScript is minified.
type Level int

const (
	// WhitespaceOnly removes whitespace and comments.
	WhitespaceOnly Level = iota + 1
	// Simple also rewrites syntax and renames local identifiers. This is the default.
	Simple
	// Advanced also renames properties, except those declared as externs.
	Advanced
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = Simple

func (l Level) String() string {
	switch l {
	case WhitespaceOnly:
		return "whitespace"
	case Simple:
		return "simple"
	case Advanced:
		return "advanced"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= WhitespaceOnly && l <= Advanced
}

// ParseLevel maps a level name onto a Level. Both the short names ("whitespace",
// "simple", "advanced") and the Closure Compiler names ("WHITESPACE_ONLY",
// "SIMPLE_OPTIMIZATIONS", "ADVANCED_OPTIMIZATIONS") are accepted, in any case. An empty
// name yields DefaultLevel.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultLevel, nil
	case "whitespace", "whitespace_only":
		return WhitespaceOnly, nil
	case "simple", "simple_optimizations":
		return Simple, nil
	case "advanced", "advanced_optimizations":
		return Advanced, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so levels can be read from config
// files.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
